package sqlinline

const QInsertTicket = `--sql 1a9e3c57-4b80-4d26-95f1-78e2d0b4c6a3
insert into chatbot_messages (id, ticket_code, email, transcript, status, lifecycle, created_at, updated_at)
values (gen_random_uuid(), $1::text, $2::text, coalesce($3::jsonb, '[]'::jsonb), 'unread', 'active', now(), now())
returning id, created_at;
`

const QGetTicketByCode = `--sql 5d03b8f2-7e41-4a9c-b6d8-04f19c2e5a70
select id, ticket_code, email, transcript, status, lifecycle, created_at, updated_at
from chatbot_messages
where ticket_code = $1::text;
`

const QListTickets = `--sql 83c1f6a9-0d25-4e78-a493-b7e60d1f8c24
select id, ticket_code, email, transcript, status, lifecycle, created_at, updated_at
from chatbot_messages
where ($1::text = '' or status = $1::text)
  and ($2::text = '' or lifecycle = $2::text)
order by created_at desc
limit $3::int offset $4::int;
`

const QMarkTicketRead = `--sql b0e57d14-9f68-4c32-81a0-d26c4e8b9f57
update chatbot_messages
set status = 'read',
    updated_at = now()
where id = $1::uuid;
`

const QMarkTicketUnread = `--sql 6e18a5c3-2f74-4b09-8d61-a37c50e9b2f4
update chatbot_messages
set status = 'unread',
    updated_at = now()
where id = $1::uuid;
`

const QCloseTicket = `--sql 74a2d9c6-1e0b-4f85-92c7-58d3a0f6e1b9
update chatbot_messages
set lifecycle = 'closed',
    updated_at = now()
where ticket_code = $1::text
returning id;
`

const QInsertReply = `--sql c8f30b61-5a97-4d42-b8e5-1f60c2d794a8
insert into support_replies (id, ticket_id, sender, body, created_at)
values (gen_random_uuid(), $1::uuid, $2::text, $3::text, now())
returning id, created_at;
`

const QListReplies = `--sql 29d6e4b0-8c13-4f7a-a0d2-6b95e1c3f748
select id, ticket_id, sender, body, created_at
from support_replies
where ticket_id = $1::uuid
order by created_at asc;
`
