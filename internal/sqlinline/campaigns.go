package sqlinline

const QInsertCampaign = `--sql 3f1a6d2e-8c4b-4e7a-9d20-5b8f1c6a7e31
insert into campaigns(creator, title, description, category, goal, raised, deadline, is_active, goal_reached, funds_withdrawn, accepts_anonymous, created_at)
values ($1::text, $2::text, $3::text, $4::text, $5::bigint, 0, $6::timestamptz, true, false, false, $7::boolean, $8::timestamptz)
returning id;
`

const QGetCampaign = `--sql 74c2e9ab-1f05-4d3c-8a6e-0d9b4f2c5e18
select id, creator, title, description, category, goal, raised, deadline, is_active, goal_reached, funds_withdrawn, accepts_anonymous, created_at
from campaigns
where id = $1::bigint;
`

const QUpdateCampaign = `--sql c8d4b7f0-62a1-4e9c-b3d5-7f0a2e8c1b46
update campaigns
set raised = $2::bigint,
    is_active = $3::boolean,
    goal_reached = $4::boolean,
    funds_withdrawn = $5::boolean
where id = $1::bigint;
`

const QListActiveCampaigns = `--sql 5e9f3c1a-b7d2-4a80-9c64-2e1d8b5f0a73
select id, creator, title, description, category, goal, raised, deadline, is_active, goal_reached, funds_withdrawn, accepts_anonymous, created_at
from campaigns
where is_active and deadline > $1::timestamptz
order by id;
`
