package sqlinline

// Activity score thresholds in the two queries below mirror
// domain.ActivityScore and domain.ActivityLevelForScore.

const QAggregatedUsage = `--sql befcd254-cec1-4f8e-965c-0029d604d7ea
with per_user as (
    select
        l.user_id,
        coalesce(sum(l.prompt_tokens), 0)::bigint as prompt_tokens,
        coalesce(sum(l.completion_tokens), 0)::bigint as completion_tokens,
        coalesce(sum(l.prompt_tokens + l.completion_tokens), 0)::bigint as total_tokens,
        coalesce(sum(l.estimated_cost), 0)::numeric as estimated_cost,
        count(*)::bigint as usage_count,
        min(l.created_at) as earliest_activity,
        max(l.created_at) as latest_activity
    from usage_logs l
    group by l.user_id
),
scored as (
    select
        pu.*,
        a.email,
        coalesce(p.full_name, '') as full_name,
        extract(epoch from (now() - pu.latest_activity)) / 86400.0 as days_since_last,
        pu.usage_count / (1.0 + (extract(epoch from (now() - pu.latest_activity)) / 86400.0) / 7.0) as activity_score,
        exists (
            select 1
            from credit_purchases cp
            where cp.user_id = pu.user_id
              and cp.status = 'completed'
        ) as has_completed_payment,
        (a.email like '%@he2.ai') as is_internal
    from per_user pu
    join auth_users a on a.id = pu.user_id
    left join user_profiles p on p.user_id = pu.user_id
)
select
    s.user_id,
    s.full_name,
    s.email,
    s.prompt_tokens,
    s.completion_tokens,
    s.total_tokens,
    s.estimated_cost,
    s.usage_count,
    s.earliest_activity,
    s.latest_activity,
    s.has_completed_payment,
    s.days_since_last,
    s.activity_score,
    count(*) over() as total_count,
    sum(s.total_tokens) over() as grand_total_tokens,
    sum(s.estimated_cost) over() as grand_total_cost
from scored s
where ($1::text = '' or s.email ilike '%' || $1 || '%' or s.full_name ilike '%' || $1 || '%')
  and ($2::text = 'all'
       or ($2 = 'high' and s.activity_score >= 10)
       or ($2 = 'medium' and s.activity_score >= 3 and s.activity_score < 10)
       or ($2 = 'low' and s.activity_score > 0.5 and s.activity_score < 3)
       or ($2 = 'inactive' and s.activity_score <= 0.5))
  and ($3::text = 'all'
       or ($3 = 'internal' and s.is_internal)
       or ($3 = 'external' and not s.is_internal))
order by s.latest_activity desc
limit $4::int offset $5::int;
`

const QAggregatedUsageExport = `--sql 16c522a8-748b-42a1-9bb6-d1dda869a482
with per_user as (
    select
        l.user_id,
        coalesce(sum(l.prompt_tokens), 0)::bigint as prompt_tokens,
        coalesce(sum(l.completion_tokens), 0)::bigint as completion_tokens,
        coalesce(sum(l.prompt_tokens + l.completion_tokens), 0)::bigint as total_tokens,
        coalesce(sum(l.estimated_cost), 0)::numeric as estimated_cost,
        count(*)::bigint as usage_count,
        min(l.created_at) as earliest_activity,
        max(l.created_at) as latest_activity
    from usage_logs l
    group by l.user_id
),
scored as (
    select
        pu.*,
        a.email,
        coalesce(p.full_name, '') as full_name,
        extract(epoch from (now() - pu.latest_activity)) / 86400.0 as days_since_last,
        pu.usage_count / (1.0 + (extract(epoch from (now() - pu.latest_activity)) / 86400.0) / 7.0) as activity_score,
        exists (
            select 1
            from credit_purchases cp
            where cp.user_id = pu.user_id
              and cp.status = 'completed'
        ) as has_completed_payment,
        (a.email like '%@he2.ai') as is_internal
    from per_user pu
    join auth_users a on a.id = pu.user_id
    left join user_profiles p on p.user_id = pu.user_id
)
select
    s.user_id,
    s.full_name,
    s.email,
    s.prompt_tokens,
    s.completion_tokens,
    s.total_tokens,
    s.estimated_cost,
    s.usage_count,
    s.earliest_activity,
    s.latest_activity,
    s.has_completed_payment,
    s.days_since_last,
    s.activity_score,
    count(*) over() as total_count,
    sum(s.total_tokens) over() as grand_total_tokens,
    sum(s.estimated_cost) over() as grand_total_cost
from scored s
where ($1::text = '' or s.email ilike '%' || $1 || '%' or s.full_name ilike '%' || $1 || '%')
  and ($2::text = 'all'
       or ($2 = 'high' and s.activity_score >= 10)
       or ($2 = 'medium' and s.activity_score >= 3 and s.activity_score < 10)
       or ($2 = 'low' and s.activity_score > 0.5 and s.activity_score < 3)
       or ($2 = 'inactive' and s.activity_score <= 0.5))
  and ($3::text = 'all'
       or ($3 = 'internal' and s.is_internal)
       or ($3 = 'external' and not s.is_internal))
order by s.latest_activity desc;
`
