package commands

import (
	"fmt"
	"log"

	"school-attendance/backend/internal/pkg/repository/postgresql"

	"github.com/pkg/errors"
)

// ErrHelp provides context that help was given.
var ErrHelp = errors.New("provided help")

type Scheme struct {
	Index       int
	Description string
	Query       string
}

var scheme = []Scheme{
	{
		Index:       1,
		Description: "CREATE TYPE \"user_role\" AS ENUM",
		Query: `
        CREATE TYPE "user_role" AS ENUM ('ADMIN', 'TEACHER', 'STUDENT');`,
	},
	{
		Index:       2,
		Description: "CREATE TYPE \"attendance_status\" AS ENUM",
		Query: `
        CREATE TYPE "attendance_status" AS ENUM ('present', 'excused', 'sick', 'absent');`,
	},
	{
		Index:       3,
		Description: "CREATE TYPE \"verification_status\" AS ENUM",
		Query: `
        CREATE TYPE "verification_status" AS ENUM ('pending', 'approved', 'rejected');`,
	},
	{
		Index:       4,
		Description: "CREATE TYPE \"leave_kind\" AS ENUM",
		Query: `
        CREATE TYPE "leave_kind" AS ENUM ('leave', 'sick');`,
	},
	{
		Index:       5,
		Description: "Create table: users.",
		Query: `
        CREATE TABLE IF NOT EXISTS users (
            id serial primary key,
            role user_role not null,
            full_name text not null,
            email text,
            username text,
            nis text,
            nip text,
            password text not null,
            created_at timestamp default now(),
            created_by int references users(id),
            updated_at timestamp,
            updated_by int references users(id),
            deleted_at timestamp,
            deleted_by int references users(id)
        );`,
	},
	{
		Index:       6,
		Description: "Unique login identifiers among live rows.",
		Query: `
        CREATE UNIQUE INDEX IF NOT EXISTS users_nis_live ON users (nis) WHERE nis IS NOT NULL AND deleted_at IS NULL;
        CREATE UNIQUE INDEX IF NOT EXISTS users_nip_live ON users (nip) WHERE nip IS NOT NULL AND deleted_at IS NULL;
        CREATE UNIQUE INDEX IF NOT EXISTS users_email_live ON users (email) WHERE email IS NOT NULL AND deleted_at IS NULL;
        CREATE UNIQUE INDEX IF NOT EXISTS users_username_live ON users (username) WHERE username IS NOT NULL AND deleted_at IS NULL;`,
	},
	{
		Index:       7,
		Description: "Create admin with username: admin, password: admin123",
		Query: `
        INSERT INTO users(role, full_name, username, password)
        SELECT 'ADMIN', 'Administrator', 'admin', '$2a$10$NKtnMwDPFSQLG6uOi4Zqheru5Ygbj9TWFHjpl478rRSaO5cJ9QuH2'
        WHERE NOT EXISTS (SELECT username FROM users WHERE username = 'admin');
        `,
	},
	{
		Index:       8,
		Description: "Create table: class",
		Query: `
        CREATE TABLE IF NOT EXISTS class (
            id serial primary key,
            name text not null,
            grade int not null,
            homeroom_teacher_id int references users(id),
            created_at timestamp default now(),
            created_by int references users(id),
            updated_at timestamp,
            updated_by int references users(id),
            deleted_at timestamp,
            deleted_by int references users(id)
        );`,
	},
	{
		Index:       9,
		Description: "Create table: student.",
		Query: `
        CREATE TABLE IF NOT EXISTS student (
            id serial primary key,
            user_id int not null references users(id),
            class_id int references class(id),
            created_at timestamp default now(),
            created_by int references users(id),
            updated_at timestamp,
            updated_by int references users(id),
            deleted_at timestamp,
            deleted_by int references users(id)
        );`,
	},
	{
		Index:       10,
		Description: "Create table: attendance.",
		Query: `
        CREATE TABLE IF NOT EXISTS attendance (
            id SERIAL PRIMARY KEY,
            student_id INT NOT NULL REFERENCES student(id),
            attendance_day DATE NOT NULL,
            status attendance_status NOT NULL DEFAULT 'present',
            check_in_time TIMESTAMP,
            check_out_time TIMESTAMP,
            note TEXT,
            recorded_by INT REFERENCES users(id),
            created_at TIMESTAMP DEFAULT NOW(),
            created_by INT REFERENCES users(id),
            updated_at TIMESTAMP,
            updated_by INT REFERENCES users(id),
            deleted_at TIMESTAMP,
            deleted_by INT REFERENCES users(id)
        );`,
	},
	{
		Index:       11,
		Description: "One live attendance record per student and day.",
		Query: `
        CREATE UNIQUE INDEX IF NOT EXISTS attendance_student_day_live
        ON attendance (student_id, attendance_day)
        WHERE deleted_at IS NULL;`,
	},
	{
		Index:       12,
		Description: "Create table: leave_request.",
		Query: `
        CREATE TABLE IF NOT EXISTS leave_request (
            id SERIAL PRIMARY KEY,
            student_id INT NOT NULL REFERENCES student(id),
            leave_day DATE NOT NULL,
            kind leave_kind NOT NULL,
            reason TEXT NOT NULL,
            status verification_status NOT NULL DEFAULT 'pending',
            verified_by INT REFERENCES users(id),
            verified_at TIMESTAMP,
            created_at TIMESTAMP DEFAULT NOW(),
            created_by INT REFERENCES users(id),
            updated_at TIMESTAMP,
            updated_by INT REFERENCES users(id),
            deleted_at TIMESTAMP,
            deleted_by INT REFERENCES users(id)
        );`,
	},
	{
		Index:       13,
		Description: "One live pending request per student and day.",
		Query: `
        CREATE UNIQUE INDEX IF NOT EXISTS leave_request_pending_unique
        ON leave_request (student_id, leave_day)
        WHERE status = 'pending' AND deleted_at IS NULL;`,
	},
	{
		Index:       14,
		Description: "Create table: school_profile.",
		Query: `
        CREATE TABLE IF NOT EXISTS school_profile (
            id SERIAL PRIMARY KEY,
            school_name VARCHAR(250) NOT NULL,
            logo_url VARCHAR(250),
            address TEXT,
            start_time TIME,
            end_time TIME,
            late_time TIME,
            created_at TIMESTAMP DEFAULT NOW(),
            created_by INT REFERENCES users(id),
            updated_at TIMESTAMP,
            updated_by INT REFERENCES users(id),
            deleted_at TIMESTAMP,
            deleted_by INT REFERENCES users(id)
        );`,
	},
	{
		Index:       15,
		Description: "Insert data for table: school_profile.",
		Query: `
        INSERT INTO school_profile (
            id,
            school_name,
            address,
            start_time,
            end_time,
            late_time,
            created_by,
            updated_by
        )
        SELECT 1, 'Sekolah Absenku', 'Jl. Pendidikan No. 1, Jakarta', '07:00:00', '15:00:00', '07:30:00', 1, 1
        WHERE NOT EXISTS (SELECT id FROM school_profile WHERE id = 1);`,
	},
}

// Migrate creates the scheme in the database.
func Migrate(db *postgresql.Database) {
	for _, s := range scheme {
		if _, err := db.Query(s.Query); err != nil {
			log.Fatalln("migrate error", err)
		}
	}
}

func MigrateUP(db *postgresql.Database) {
	var (
		version int
		dirty   bool
		er      *string
	)
	err := db.QueryRow("SELECT version, dirty, error FROM schema_migrations").Scan(&version, &dirty, &er)
	if err != nil {
		if err.Error() == `ERROR: relation "schema_migrations" does not exist (SQLSTATE=42P01)` {
			if _, err = db.Exec(`
				CREATE TABLE IF NOT EXISTS schema_migrations (version int not null, dirty bool not null, error text);
				DELETE FROM schema_migrations;
				INSERT INTO schema_migrations (version, dirty) values (0, false);
			`); err != nil {
				log.Fatalln("migrate schema_migrations create error", err)
			}
			version = 0
			dirty = false
		} else {
			log.Fatalln("migrate schema_migrations scan: ", err)
		}
	}

	if dirty {
		for _, v := range scheme {
			if v.Index == version {
				if _, err = db.Exec(v.Query); err != nil {
					if _, err = db.Exec(fmt.Sprintf(`UPDATE schema_migrations SET error = '%s'`, err.Error())); err != nil {
						log.Fatalln("migrate error", err)
					}
					log.Fatalln(fmt.Sprintf("migrate error version: %d", version), err)
				}
				if _, err = db.Exec(`UPDATE schema_migrations SET dirty = false, error = null`); err != nil {
					log.Fatalln("migrate error", err)
				}
			}
		}
	}

	for _, s := range scheme {
		if s.Index > version {
			if _, err = db.Exec(s.Query); err != nil {
				if _, err = db.Exec(fmt.Sprintf(`UPDATE schema_migrations SET error = '%s', version = %d, dirty = true`, err.Error(), s.Index)); err != nil {
					log.Fatalln("migrate error", err)
				}
				log.Fatalln(fmt.Sprintf("migrate error version: %d", s.Index), err)
			}
			if _, err = db.Exec(fmt.Sprintf(`UPDATE schema_migrations SET version = %d`, s.Index)); err != nil {
				log.Fatalln("migrate error", err)
			}
		}
	}
}
