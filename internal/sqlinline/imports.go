package sqlinline

const QInsertImportJob = `--sql 93191637-26f7-402f-b126-394bf686a609
insert into import_jobs (
  id,
  user_id,
  source_type,
  source_data,
  status,
  created_at
) values (
  $1::uuid,
  $2::uuid,
  $3::text,
  $4::text,
  'pending',
  now()
) returning created_at;
`

const QCountPendingImportJobsByType = `--sql ee6c24f1-84a9-4fac-8d26-ffebfbae1292
select count(*)
from import_jobs
where source_type = $1::text
  and status = 'pending';
`

const QClaimNextImportJob = `--sql 862507ea-994b-4063-a560-5008d43ffc6d
with next_job as (
    select id
    from import_jobs
    where status = 'pending'
      and claimed_at is null
    order by created_at asc
    for update skip locked
    limit 1
),
claimed as (
    update import_jobs
    set claimed_at = now()
    where id in (select id from next_job)
    returning id::text, user_id::text, source_type, source_data, status, recipe_id::text, error_message, created_at, claimed_at
)
select * from claimed;
`

const QFailImportJob = `--sql 398bb5f0-56df-49bd-802e-957987934a2d
update import_jobs
set status = 'failed',
    error_message = $2::text,
    finished_at = now()
where id = $1::uuid
  and status = 'pending';
`

const QSelectImportJobByID = `--sql 80cbe80b-b06d-44c5-a7fd-bd4555ebac15
select id::text, user_id::text, source_type, source_data, status, recipe_id::text, error_message, created_at, claimed_at
from import_jobs
where id = $1::uuid
limit 1;
`

const QListImportJobsByUser = `--sql 39c7f2b6-a13c-4b4e-bf91-15b09678e615
select id::text, user_id::text, source_type, source_data, status, recipe_id::text, error_message, created_at, claimed_at
from import_jobs
where user_id = $1::uuid
order by created_at desc
limit $2::int;
`

const QFailStaleImportJobs = `--sql 90b57ff0-b733-432c-933a-debfb912d152
update import_jobs
set status = 'failed',
    error_message = $2::text,
    finished_at = now()
where status = 'pending'
  and coalesce(claimed_at, created_at) < now() - make_interval(secs => $1::double precision);
`
