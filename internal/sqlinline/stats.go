package sqlinline

const QAdminStats = `--sql a6e92c48-0b57-4f13-9d86-5c1e40b7d2f9
select
    (select count(*) from documents),
    (select coalesce(sum(view_count), 0) from documents),
    (select count(*) from donations),
    (select count(*) from donations where status = 'completed'),
    (select coalesce(sum(amount_cents), 0) from donations where status = 'completed'),
    (select count(*) from chatbot_messages where status = 'unread'),
    (select count(*) from chatbot_messages where lifecycle = 'active');
`
