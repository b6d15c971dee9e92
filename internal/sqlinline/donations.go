package sqlinline

const QInsertDonation = `--sql 9b79c57c-3615-48a2-9d85-3426d5b3f7eb
insert into donations(campaign_id, seq, donor, amount, status, region, receipt, created_at)
values ($1::bigint, (select coalesce(max(seq), 0) + 1 from donations where campaign_id = $1::bigint), nullif($2::text, ''), $3::bigint, 'active', $4::text, $5::bytea, $6::timestamptz)
returning seq;
`

const QListDonations = `--sql 7a08e4f6-cb8a-42c4-bd7f-291d6e913edc
select campaign_id, seq, donor, amount, status, region, receipt, created_at
from donations
where campaign_id = $1::bigint
order by seq;
`

const QMarkDonationsRefunded = `--sql 2d6b8e4f-a193-4c57-b0e8-6f4d2a9c7b15
update donations
set status = 'refunded'
where campaign_id = $1::bigint and seq = any($2::int[]);
`
