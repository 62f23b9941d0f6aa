package sqlinline

const QPing = `--sql 33660355-9362-4bcf-8622-0f54388d9504
select 1;
`
