package sqlinline

const QInsertEmailDelivery = `--sql 51327e6b-e8ca-45b9-ae74-ae3f49390619
insert into email_deliveries (id, user_id, recipient_email, subject, status, attempted_at)
values (gen_random_uuid(), nullif($1::text, '')::uuid, $2::text, $3::text, 'attempted', now())
returning id;
`

const QMarkDeliveryConfirmed = `--sql 013d3043-7b9a-4696-829b-66c30832d217
update email_deliveries
set status = 'confirmed',
    sent_at = now()
where id = $1::uuid;
`

const QMarkDeliveryFailed = `--sql 9795e6b8-6f13-430e-9848-79d53b13a671
update email_deliveries
set status = 'failed',
    error = $2::text
where id = $1::uuid;
`

const QUpsertUserFlag = `--sql 887c1f62-abc7-4485-8530-cc54eebbb589
insert into user_flags (user_id, flag, set_at)
values ($1::uuid, $2::text, now())
on conflict (user_id, flag) do update set set_at = now();
`
