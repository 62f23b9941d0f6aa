package sqlinline

const QListUserProfiles = `--sql c39076b0-c11a-42e5-8e87-f115d49d4e77
select
    p.user_id,
    coalesce(a.email, '') as email,
    p.full_name,
    p.preferred_name,
    p.work_description,
    p.plan_type,
    p.account_type,
    coalesce(p.referral_source, '') as referral_source,
    p.created_at,
    p.updated_at,
    a.last_sign_in_at,
    count(*) over() as total_count
from user_profiles p
left join auth_users a on a.id = p.user_id
where $1::text = ''
   or a.email ilike '%' || $1 || '%'
   or p.full_name ilike '%' || $1 || '%'
order by p.created_at desc
limit $2::int offset $3::int;
`

const QSelectUserProfile = `--sql b74f510f-3522-4ecd-97fe-3b1026dd61d9
select
    p.user_id,
    coalesce(a.email, '') as email,
    p.full_name,
    p.preferred_name,
    p.work_description,
    p.plan_type,
    p.account_type,
    coalesce(p.referral_source, '') as referral_source,
    p.metadata,
    p.created_at,
    p.updated_at
from user_profiles p
left join auth_users a on a.id = p.user_id
where p.user_id = $1::uuid
limit 1;
`

const QInsertAuthUser = `--sql 91d077d4-9ee7-4c44-8a81-d4d725420618
insert into auth_users (id, email, encrypted_password, email_confirmed_at, created_at)
values (gen_random_uuid(), lower($1::text), $2::text, now(), now())
returning id;
`

const QInsertUserProfile = `--sql 2f778a69-b5e3-47e8-8585-225a1c5dd5fb
insert into user_profiles (user_id, full_name, preferred_name, work_description, plan_type, account_type, referral_source, metadata, created_at, updated_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::text, $6::text, nullif($7::text, ''), coalesce($8::jsonb, '{}'::jsonb), now(), now())
returning created_at;
`

const QDeleteAuthUser = `--sql 5986c06a-cdc2-46b6-9160-20540a4072ab
delete from auth_users
where id = $1::uuid;
`

const QDeleteUserProfile = `--sql b5b07905-763b-4473-8b42-ef9578b77d5f
delete from user_profiles
where user_id = $1::uuid;
`

const QSelectProfilesByIDs = `--sql 4ded6823-11ae-4e41-b92d-d7f516c6e989
select p.user_id, p.full_name
from user_profiles p
where p.user_id = any($1::uuid[])
order by p.created_at;
`

const QSelectAllProfiles = `--sql aaa514fc-b2a9-4d22-948f-e4acb4516209
select p.user_id, p.full_name
from user_profiles p
order by p.created_at;
`

const QSelectAuthEmailsByIDs = `--sql 96d16951-dad9-4b3f-ab78-ed1695235db1
select id, email
from auth_users
where id = any($1::uuid[])
  and email <> '';
`

const QListAuthEmailsPage = `--sql 4b0fb3d3-f010-4d04-94b4-d8e5bb33aa5d
select id, email
from auth_users
where email <> ''
order by created_at
limit $1::int offset $2::int;
`

const QSelectUserEmailsWithNames = `--sql d80d34cc-ba53-4b2b-8c30-8cfadeb2bc98
select a.id, a.email, coalesce(p.full_name, '') as full_name
from auth_users a
left join user_profiles p on p.user_id = a.id
where a.id = any($1::uuid[])
  and a.email <> ''
order by a.created_at;
`
