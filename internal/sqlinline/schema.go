package sqlinline

const QSchemaCampaigns = `--sql 0f8e2a6d-4c19-4b37-a5d0-6e3f9b1c8d42
create table if not exists campaigns (
    id bigserial primary key,
    creator text not null,
    title text not null,
    description text not null,
    category text not null,
    goal bigint not null,
    raised bigint not null default 0,
    deadline timestamptz not null,
    is_active boolean not null default true,
    goal_reached boolean not null default false,
    funds_withdrawn boolean not null default false,
    accepts_anonymous boolean not null default true,
    created_at timestamptz not null default now()
);
`

const QSchemaDonations = `--sql b5d1f7a3-28c6-4e94-b7f0-1a9e5c3d6b28
create table if not exists donations (
    campaign_id bigint not null references campaigns(id),
    seq int not null,
    donor text,
    amount bigint not null,
    status text not null default 'active',
    region text not null default '',
    receipt bytea,
    created_at timestamptz not null default now(),
    primary key (campaign_id, seq)
);
`

const QSchemaUserCampaigns = `--sql 8a4c6e2f-d073-4951-86b4-e5f2a1d9c738
create table if not exists user_campaigns (
    pos bigserial primary key,
    account text not null,
    campaign_id bigint not null
);
`

const QSchemaUserDonations = `--sql d7f2b9e5-16a8-4c03-9e7d-3b6f8a0c2d91
create table if not exists user_donations (
    pos bigserial primary key,
    account text not null,
    campaign_id bigint not null
);
`

// Schema lists the DDL statements in application order.
func Schema() []string {
	return []string{
		QSchemaCampaigns,
		QSchemaDonations,
		QSchemaUserCampaigns,
		QSchemaUserDonations,
	}
}
