package sqlinline

const QListCreditBalances = `--sql da92b27f-4720-4e51-bce5-b85a48422692
select
    user_id,
    balance_dollars,
    total_purchased,
    total_used,
    last_updated,
    initial_assignment_at,
    last_assignment_at,
    last_assignment_amount,
    last_assignment_notes
from credit_balances
where nullif($1::text, '') is null
   or user_id = nullif($1::text, '')::uuid
order by last_updated desc;
`

const QUpsertCreditBalance = `--sql 3830caa8-d844-428c-aee0-b7956b283df6
insert into credit_balances (user_id, balance_dollars, total_purchased, total_used, last_updated, initial_assignment_at, last_assignment_at, last_assignment_amount, last_assignment_notes)
values ($1::uuid, $2::numeric, $2::numeric, 0, now(), now(), now(), $2::numeric, nullif($3::text, ''))
on conflict (user_id) do update set
    balance_dollars = credit_balances.balance_dollars + excluded.balance_dollars,
    total_purchased = credit_balances.total_purchased + excluded.total_purchased,
    last_updated = now(),
    last_assignment_at = now(),
    last_assignment_amount = excluded.last_assignment_amount,
    last_assignment_notes = excluded.last_assignment_notes
returning user_id, balance_dollars, total_purchased, total_used, last_updated, initial_assignment_at, last_assignment_at, last_assignment_amount, last_assignment_notes;
`

const QListCreditPurchases = `--sql 4efed845-6f4f-49fb-86d0-bc1d6b8d445e
select
    cp.id,
    cp.user_id,
    coalesce(a.email, '') as email,
    cp.amount_dollars,
    cp.credits,
    cp.status,
    coalesce(cp.stripe_payment_intent, '') as stripe_payment_intent,
    cp.created_at,
    count(*) over() as total_count
from credit_purchases cp
left join auth_users a on a.id = cp.user_id
where (nullif($1::text, '') is null
   or cp.user_id = nullif($1::text, '')::uuid)
  and (nullif($2::text, '') is null or cp.status = $2)
order by cp.created_at desc
limit $3::int offset $4::int;
`
