package sqlinline

const QEnqueueNotification = `--sql e7b14f92-3c05-4a68-bd27-90e5a8d1c4f6
insert into notifications (id, kind, recipient, subject, body, status, attempts, created_at)
values (gen_random_uuid(), $1::text, $2::text, $3::text, $4::text, 'pending', 0, now())
returning id;
`

const QNextPendingNotification = `--sql 4f80c2d5-6b19-4e73-8a04-d1c39f6e2b85
select id, kind, recipient, subject, body, attempts
from notifications
where status = 'pending'
order by created_at asc
limit 1;
`

const QMarkNotificationSent = `--sql 90c5a3e8-1f72-4d06-b9c1-37e8d0a4f562
update notifications
set status = 'sent',
    attempts = attempts + 1,
    sent_at = now()
where id = $1::uuid;
`

const QMarkNotificationFailed = `--sql 62d8f0b7-4a93-4c51-86e0-f2b7c9d5a013
update notifications
set status = case when attempts + 1 >= $2::int then 'failed' else 'pending' end,
    attempts = attempts + 1,
    last_error = $3::text
where id = $1::uuid;
`
