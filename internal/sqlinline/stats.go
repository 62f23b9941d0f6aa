package sqlinline

const QDashboardStats = `--sql d34e351b-b0d7-4bc9-920d-d95a3a383bca
select
    (select count(*) from invite_codes) as total_codes,
    (select count(*)
       from invite_codes
      where is_archived = false
        and is_used = false
        and (expires_at is null or expires_at > now())
        and current_uses < max_uses) as active_codes,
    (select count(*)
       from invite_codes
      where is_used = true or current_uses > 0) as used_codes,
    (select count(*)
       from email_deliveries
      where status = 'confirmed') as emails_sent;
`
