package mysql

// csv is written only through ReplaceCSV's locked transaction; a concurrent
// create-if-absent upsert must never clobber it on the duplicate path.
const upsertDatasetSQL = `
INSERT INTO datasets
  (id, name, csv)
VALUES
  (?, ?, ?)
ON DUPLICATE KEY UPDATE
  name       = VALUES(name),
  updated_at = CURRENT_TIMESTAMP
`

// Row lock for read-merge-write; the merge itself is a pure function, so the
// storage layer is the only place serializing concurrent writers.
const selectCSVForUpdateSQL = `
SELECT csv FROM datasets WHERE id = ? FOR UPDATE
`

const updateCSVSQL = `
UPDATE datasets SET csv = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
`

const insertImportLogSQL = `
INSERT INTO import_log (dataset_id, rows_in, added, updated)
VALUES (?, ?, ?, ?)
`

const getDatasetSQL = `
SELECT id, name, csv FROM datasets WHERE id = ?
`

const findByNameSQL = `
SELECT id, name, csv FROM datasets WHERE name = ? LIMIT 1
`

const listDatasetsSQL = `
SELECT id, name, csv FROM datasets ORDER BY name, id
`
