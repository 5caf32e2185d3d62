package sqlinline

const QInsertDonation = `--sql 3f6a1c0e-9d42-4b7a-8c11-5e2f90d4a6b3
insert into donations (id, document_id, payer_name, payer_email, amount_cents, currency, status, link_token, country, properties, created_at, expires_at)
values (gen_random_uuid(), nullif($1::text, '')::uuid, $2::text, $3::text, $4::bigint, $5::text, 'pending', $6::text, $7::text,
        coalesce($8::jsonb, '{}'::jsonb), now(), now() + make_interval(hours => $9::int))
returning id, created_at, expires_at;
`

const QSetDonationPaymentID = `--sql b8d2f4a1-6c3e-4f90-a257-1d8e4b6c20f5
update donations
set paypal_payment_id = $2::text
where id = $1::uuid;
`

const QGetDonationByToken = `--sql 7c1e5b92-0a4d-4c6f-b3e8-92d501f7a4c6
select id, document_id, payer_name, payer_email, amount_cents, currency, status,
       paypal_payment_id, paypal_transaction_id, link_token, country, created_at, expires_at
from donations
where link_token = $1::text;
`

// QCompleteDonation deliberately leaves expires_at untouched: the
// download window is anchored to creation, not completion.
const QCompleteDonation = `--sql e4a90d17-3b6f-42c8-9e05-7f1c28b4d6a9
update donations
set status = 'completed',
    paypal_transaction_id = $2::text
where id = $1::uuid
returning payer_email, amount_cents, link_token, expires_at;
`

const QCompleteDonationByTxn = `--sql 51f7c3d8-2e9a-4b04-86d1-c40b9e7f52a3
update donations
set status = 'completed'
where paypal_transaction_id = $1::text
returning id;
`

const QInsertUnlinkedDonation = `--sql 9a04e6b2-7d1f-4358-bc92-e65a01d3f8c4
insert into donations (id, payer_name, payer_email, amount_cents, currency, status, link_token, created_at, expires_at)
values (gen_random_uuid(), $1::text, $2::text, $3::bigint, $4::text, 'unlinked', $5::text, now(), now())
returning id;
`

const QListDonations = `--sql 2d8b5f90-4a1c-47e6-93b7-06f4c2a9d1e8
select id, document_id, payer_name, payer_email, amount_cents, currency, status,
       paypal_payment_id, paypal_transaction_id, link_token, country, created_at, expires_at
from donations
order by created_at desc
limit $1::int offset $2::int;
`

const QDeleteDonation = `--sql c6e3a1f4-8b20-4d97-a5c3-3e918f0b6d72
delete from donations
where id = $1::uuid;
`
