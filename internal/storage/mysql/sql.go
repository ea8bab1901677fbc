package mysql

const courtColumns = `id, name, address, city, district, latitude, longitude, instagram_url, tiktok_url, image_urls, admin_created_by, version, created_at, updated_at`

const insertCourtSQL = `
INSERT INTO courts
  (name, address, city, district, latitude, longitude, instagram_url, tiktok_url, image_urls, admin_created_by, version)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
`

// The SET list of an update is assembled in the repo; these are its fixed parts.
const (
	updateCourtPrefix  = "UPDATE courts SET "
	updateCourtFields  = "name = ?, address = ?, city = ?, district = ?, latitude = ?, longitude = ?, instagram_url = ?, tiktok_url = ?"
	updateCourtImages  = "image_urls = ?"
	updateCourtTrailer = "admin_created_by = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP"
)

const getCourtSQL = `SELECT ` + courtColumns + ` FROM courts WHERE id = ?`

const listCourtsSQL = `SELECT id, name, city, district FROM courts ORDER BY name, id`

// One row per (court_id, source): a second write replaces every score in place.
const upsertRatingSQL = `
INSERT INTO court_ratings
  (court_id, source, overall, rim, floor, court_spacing, bench, water, backboard, admin_created_by)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  overall          = VALUES(overall),
  rim              = VALUES(rim),
  floor            = VALUES(floor),
  court_spacing    = VALUES(court_spacing),
  bench            = VALUES(bench),
  water            = VALUES(water),
  backboard        = VALUES(backboard),
  admin_created_by = VALUES(admin_created_by),
  updated_at       = CURRENT_TIMESTAMP
`

const getRatingSQL = `
SELECT court_id, source, overall, rim, floor, court_spacing, bench, water, backboard,
  admin_created_by, created_at, updated_at
FROM court_ratings
WHERE court_id = ? AND source = ?
`
