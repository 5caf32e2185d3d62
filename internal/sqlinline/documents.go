package sqlinline

const QInsertDocument = `--sql 0b7d2e96-5f3a-41c8-b604-8a1d5c9e2f70
insert into documents (id, title, description, category, tags, storage_key, view_count, created_at, updated_at)
values (gen_random_uuid(), $1::text, $2::text, $3::text, $4::text[], $5::text, 0, now(), now())
returning id, created_at;
`

const QGetDocument = `--sql 8e1f4a63-2c9d-4507-91b8-d3f60a2c7e45
select id, title, description, category, tags, storage_key, view_count, created_at, updated_at
from documents
where id = $1::uuid;
`

const QGetDocumentPointer = `--sql 4c9b0e72-1d5f-483a-a6e9-5b2d8f04c1a7
select id, title, storage_key
from documents
where id = $1::uuid;
`

const QListDocuments = `--sql a2f58c10-6e3b-4d94-8071-c9e4b6d2a5f3
select id, title, description, category, tags, storage_key, view_count, created_at, updated_at
from documents
where ($1::text = '' or category = $1::text)
  and ($2::text = '' or $2::text = any(tags))
  and ($3::text = '' or title ilike '%' || $3::text || '%' or description ilike '%' || $3::text || '%')
order by created_at desc;
`

const QUpdateDocument = `--sql d5a71b38-9ce2-4f60-b2d4-7e0a93c5f186
update documents
set title = $2::text,
    description = $3::text,
    category = $4::text,
    tags = $5::text[],
    updated_at = now()
where id = $1::uuid
returning updated_at;
`

const QIncrementDocumentViews = `--sql 6f2c8d41-0a7e-4b95-93c6-e18b4f7a0d29
update documents
set view_count = view_count + 1,
    updated_at = now()
where id = $1::uuid
returning view_count;
`

const QDeleteDocument = `--sql f1b64e07-3d82-4a5c-80f9-26c7d9e1b3a5
delete from documents
where id = $1::uuid
returning storage_key;
`
