package sqlinline

// QInsertRecipeForJob stores the recipe of a pending job and completes the
// job in the same statement. It returns no row when the job is not pending.
const QInsertRecipeForJob = `--sql 229c1789-6a45-4b3d-b0ca-79d83fef3eff
with job as (
    select id, user_id
    from import_jobs
    where id = $1::uuid
      and status = 'pending'
    for update
),
new_recipe as (
    insert into recipes (
      id,
      user_id,
      title,
      description,
      n_portions,
      total_cook_time_minutes,
      ingredients,
      instructions,
      thumbnail,
      source_name,
      source_url,
      is_public,
      status,
      created_at
    )
    select
      gen_random_uuid(),
      job.user_id,
      $2::text,
      $3::text,
      $4::int,
      $5::int,
      $6::jsonb,
      $7::jsonb,
      nullif($8::text, ''),
      $9::text,
      $10::text,
      false,
      'DRAFT',
      now()
    from job
    returning id
),
completed as (
    update import_jobs
    set status = 'completed',
        recipe_id = new_recipe.id,
        error_message = null,
        finished_at = now()
    from new_recipe
    where import_jobs.id = $1::uuid
    returning new_recipe.id
)
select id::text from completed;
`
