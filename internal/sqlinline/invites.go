package sqlinline

const QListInviteCodes = `--sql c0a27b7f-936d-4d7b-847b-40379ff2f990
select
    id,
    code,
    is_used,
    used_by,
    used_at,
    created_at,
    expires_at,
    max_uses,
    current_uses,
    coalesce(email_sent_to, '{}'::text[]) as email_sent_to,
    reminder_sent_at,
    is_archived
from invite_codes
order by created_at desc;
`

const QSelectInviteCode = `--sql fd0449ca-e15a-433c-bf7b-fc51c3865e59
select
    id,
    code,
    is_used,
    used_by,
    used_at,
    created_at,
    expires_at,
    max_uses,
    current_uses,
    coalesce(email_sent_to, '{}'::text[]) as email_sent_to,
    reminder_sent_at,
    is_archived
from invite_codes
where id = $1::uuid
limit 1;
`

const QInsertInviteCode = `--sql c8030daa-4094-4fd3-a7b2-640593f2b907
insert into invite_codes (id, code, is_used, max_uses, current_uses, expires_at, email_sent_to, is_archived, created_at)
values (gen_random_uuid(), $1::text, false, $2::int, 0, $3::timestamptz, '{}'::text[], false, now())
returning id;
`

const QDeleteInviteCode = `--sql 250a4660-6b0c-4850-b3c0-e1dbca631ae3
delete from invite_codes
where id = $1::uuid;
`

const QDeleteInviteCodes = `--sql e32f9641-7e1e-4564-a563-512fdfb73b5d
delete from invite_codes
where id = any($1::uuid[]);
`

const QSetInviteCodeArchived = `--sql b25d2f61-0809-4f3a-a4e8-363af2d6776c
update invite_codes
set is_archived = $2::boolean
where id = $1::uuid;
`

const QArchiveUsedInviteCodes = `--sql 7ef4473b-5a39-4bdb-bef7-15ea1e7a8bc4
update invite_codes
set is_archived = true
where is_used = true
  and is_archived = false;
`

const QStampInviteReminder = `--sql a4d57b6d-272a-4a29-a041-7bd16f43526c
update invite_codes
set reminder_sent_at = now(),
    email_sent_to = array_append(coalesce(email_sent_to, '{}'::text[]), $2::text)
where id = $1::uuid
returning code;
`
