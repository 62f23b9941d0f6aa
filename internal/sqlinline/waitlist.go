package sqlinline

const QListWaitlist = `--sql 2e0c4221-e9e2-4de0-b01e-66b5f3764211
select
    id,
    full_name,
    email,
    company,
    phone_number,
    coalesce(country_code, '') as country_code,
    reference,
    referral_source,
    referral_source_other,
    user_agent,
    host(ip_address) as ip_address,
    joined_at,
    notified_at,
    is_notified,
    is_archived
from waitlist_users
order by joined_at desc;
`

const QArchiveWaitlistByIDs = `--sql e74ac4bb-d891-4032-a13e-3fc31cbe48d3
update waitlist_users
set is_archived = true
where id = any($1::uuid[])
  and is_archived = false;
`

const QArchiveNotifiedWaitlist = `--sql 9384d864-488a-41c5-88a4-9c2c503448a1
update waitlist_users
set is_archived = true
where is_notified = true
  and is_archived = false;
`

const QSetWaitlistCountry = `--sql e9f035be-b753-4593-a564-0c63240b17b2
update waitlist_users
set country_code = $2::text
where id = $1::uuid
  and (country_code is null or country_code = '');
`
