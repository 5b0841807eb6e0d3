package metadata

const schema = `
CREATE TABLE IF NOT EXISTS images (
    image_id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '[]',
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS allowed_users (
    email TEXT PRIMARY KEY,
    is_admin INTEGER NOT NULL DEFAULT 0,
    added_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_images_user ON images (user_id);
`
