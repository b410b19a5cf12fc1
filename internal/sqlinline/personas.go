package sqlinline

const QSelectPersonaByID = `--sql 95448366-e3ec-41a1-97a6-c63594f0d695
select id, user_id, visual_status, voice_status, coalesce(training_archive, ''), created_at, updated_at
from personas
where id = $1::text
limit 1;
`

const QListPersonas = `--sql 3cfa411c-29dd-45ef-95e0-da4a71e3beb6
select id, user_id, visual_status, voice_status, coalesce(training_archive, ''), created_at, updated_at
from personas
order by created_at desc;
`

const QListPersonasByOwner = `--sql 25aa5766-375c-4e44-9773-cdfa0f52915e
select id, user_id, visual_status, voice_status, coalesce(training_archive, ''), created_at, updated_at
from personas
where user_id = $1::text
order by created_at desc;
`

// The update arm deliberately never touches user_id: persona ownership is
// fixed at creation and racing writers may only merge status fields.
const QUpsertPersona = `--sql 063829fd-35c7-44d4-9a62-2a45ed00ec1c
insert into personas (id, user_id, visual_status, voice_status, training_archive, created_at, updated_at)
values (
    $1::text,
    $2::text,
    coalesce(nullif($3::text, ''), 'training'),
    coalesce(nullif($4::text, ''), 'training'),
    nullif($5::text, ''),
    now(),
    now()
)
on conflict (id) do update set
    visual_status = coalesce(nullif($3::text, ''), personas.visual_status),
    voice_status = coalesce(nullif($4::text, ''), personas.voice_status),
    training_archive = coalesce(nullif($5::text, ''), personas.training_archive),
    updated_at = now();
`
