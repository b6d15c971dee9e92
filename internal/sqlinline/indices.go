package sqlinline

const QAppendUserCampaign = `--sql e4a7c2d9-50b6-4f18-a3c7-9e2b6d0f8a54
insert into user_campaigns(account, campaign_id)
values ($1::text, $2::bigint);
`

const QAppendUserDonation = `--sql 1c5e9a3b-7d40-4b26-8f1a-c3e7b9d5f062
insert into user_donations(account, campaign_id)
values ($1::text, $2::bigint);
`

const QUserCampaigns = `--sql a92f4d6c-3e18-47b5-90d2-4c8a1f6e3b07
select campaign_id from user_campaigns where account = $1::text order by pos;
`

const QUserDonations = `--sql 6b3d8f1e-940a-4c72-b5e9-8a2c7d4f1e60
select campaign_id from user_donations where account = $1::text order by pos;
`
