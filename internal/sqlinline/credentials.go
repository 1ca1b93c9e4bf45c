package sqlinline

const QSelectProviderKey = `--sql 24b3e79c-adfa-4470-801b-39e33741075e
select api_key
from provider_keys
where provider = $1::text
limit 1;
`

const QUpsertProviderKey = `--sql 70360ad1-9fc1-45eb-84bc-b874d109ef6d
insert into provider_keys (provider, api_key, updated_at)
values ($1::text, $2::text, now())
on conflict (provider) do update set
    api_key = excluded.api_key,
    updated_at = now();
`
