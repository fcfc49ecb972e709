package store

const (
	dialectSQLite = "sqlite"
	dialectMySQL  = "mysql"
)

// migration holds a single schema migration with its target version and
// the SQL for each dialect.
type migration struct {
	version int
	sql     map[string]string
}

var schemaVersionExistsQuery = map[string]string{
	dialectSQLite: "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	dialectMySQL:  "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = 'schema_version'",
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: map[string]string{
			dialectSQLite: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id           TEXT PRIMARY KEY,
	nama_tugas   TEXT NOT NULL,
	tanggal      TEXT NOT NULL,
	deadline     TEXT NOT NULL,
	is_completed INTEGER NOT NULL DEFAULT 0 CHECK(is_completed IN (0, 1)),
	jenis        TEXT NOT NULL DEFAULT 'pribadi' CHECK(jenis IN ('pribadi', 'kelompok')),
	user_id      TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS subtasks (
	id             TEXT PRIMARY KEY,
	nama_sub_tugas TEXT NOT NULL,
	tugas_id       TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	is_completed   INTEGER NOT NULL DEFAULT 0 CHECK(is_completed IN (0, 1)),
	sort_order     INTEGER NOT NULL DEFAULT 0,
	created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS task_members (
	tugas_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	user_id  TEXT NOT NULL,
	PRIMARY KEY (tugas_id, user_id)
);

CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT PRIMARY KEY,
	tugas_id   TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	user_id    TEXT NOT NULL,
	channel    TEXT NOT NULL,
	title      TEXT NOT NULL,
	body       TEXT NOT NULL DEFAULT '',
	is_read    INTEGER NOT NULL DEFAULT 0 CHECK(is_read IN (0, 1)),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);
CREATE INDEX IF NOT EXISTS idx_subtasks_tugas_id ON subtasks(tugas_id);
CREATE INDEX IF NOT EXISTS idx_task_members_user_id ON task_members(user_id);
CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id, is_read);

INSERT INTO schema_version (version) VALUES (1);
`,
			dialectMySQL: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INT NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id           CHAR(36) PRIMARY KEY,
	nama_tugas   VARCHAR(255) NOT NULL,
	tanggal      CHAR(10) NOT NULL,
	deadline     CHAR(10) NOT NULL,
	is_completed TINYINT(1) NOT NULL DEFAULT 0,
	jenis        VARCHAR(16) NOT NULL DEFAULT 'pribadi',
	user_id      VARCHAR(64) NOT NULL DEFAULT '',
	created_at   DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
	updated_at   DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
	INDEX idx_tasks_user_id (user_id)
) ENGINE=InnoDB;

CREATE TABLE IF NOT EXISTS subtasks (
	id             CHAR(36) PRIMARY KEY,
	nama_sub_tugas VARCHAR(255) NOT NULL,
	tugas_id       CHAR(36) NOT NULL,
	is_completed   TINYINT(1) NOT NULL DEFAULT 0,
	sort_order     INT NOT NULL DEFAULT 0,
	created_at     DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
	INDEX idx_subtasks_tugas_id (tugas_id),
	FOREIGN KEY (tugas_id) REFERENCES tasks(id) ON DELETE CASCADE
) ENGINE=InnoDB;

CREATE TABLE IF NOT EXISTS task_members (
	tugas_id CHAR(36) NOT NULL,
	user_id  VARCHAR(64) NOT NULL,
	PRIMARY KEY (tugas_id, user_id),
	INDEX idx_task_members_user_id (user_id),
	FOREIGN KEY (tugas_id) REFERENCES tasks(id) ON DELETE CASCADE
) ENGINE=InnoDB;

CREATE TABLE IF NOT EXISTS notifications (
	id         CHAR(36) PRIMARY KEY,
	tugas_id   CHAR(36) NOT NULL,
	user_id    VARCHAR(64) NOT NULL,
	channel    VARCHAR(32) NOT NULL,
	title      VARCHAR(255) NOT NULL,
	body       TEXT NOT NULL,
	is_read    TINYINT(1) NOT NULL DEFAULT 0,
	created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
	INDEX idx_notifications_user_id (user_id, is_read),
	FOREIGN KEY (tugas_id) REFERENCES tasks(id) ON DELETE CASCADE
) ENGINE=InnoDB;

INSERT INTO schema_version (version) VALUES (1);
`,
		},
	},
	{
		version: 2,
		sql: map[string]string{
			dialectSQLite: `
CREATE INDEX IF NOT EXISTS idx_tasks_due ON tasks(is_completed, deadline);

INSERT INTO schema_version (version) VALUES (2);
`,
			dialectMySQL: `
CREATE INDEX idx_tasks_due ON tasks(is_completed, deadline);

INSERT INTO schema_version (version) VALUES (2);
`,
		},
	},
}
