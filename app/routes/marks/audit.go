package marks

import (
	"database/sql"

	"amani-schools/app/models"
)

// AuditContext carries request metadata into the change log.
type AuditContext struct {
	IPAddress string
	UserAgent string
}

// appendChangeLog writes one audit row inside the caller's
// transaction. The log is append-only: there is no update or delete
// path for mark_change_logs anywhere in the codebase.
func appendChangeLog(tx *sql.Tx, markID, actorID string, action models.MarkAction, oldValue, newValue *float64, audit AuditContext) error {
	query := `INSERT INTO mark_change_logs (mark_id, actor_id, action, old_value, new_value, ip_address, user_agent)
			  VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''))`
	_, err := tx.Exec(query, markID, actorID, action, oldValue, newValue, audit.IPAddress, audit.UserAgent)
	return err
}

// GetMarkHistory returns the full change trail for one mark, newest
// first.
func GetMarkHistory(db *sql.DB, markID string) ([]*models.MarkChangeLog, error) {
	query := `SELECT l.id, l.mark_id, l.actor_id, l.action, l.old_value, l.new_value,
					 l.ip_address, l.user_agent, l.created_at,
					 u.first_name, u.last_name, u.email
			  FROM mark_change_logs l
			  JOIN users u ON u.id = l.actor_id
			  WHERE l.mark_id = $1
			  ORDER BY l.created_at DESC`

	rows, err := db.Query(query, markID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.MarkChangeLog
	for rows.Next() {
		l := &models.MarkChangeLog{Actor: &models.User{}}
		err := rows.Scan(
			&l.ID, &l.MarkID, &l.ActorID, &l.Action, &l.OldValue, &l.NewValue,
			&l.IPAddress, &l.UserAgent, &l.CreatedAt,
			&l.Actor.FirstName, &l.Actor.LastName, &l.Actor.Email,
		)
		if err != nil {
			return nil, err
		}
		l.Actor.ID = l.ActorID
		logs = append(logs, l)
	}
	return logs, nil
}

// ActivityEntry is one row in the recent-activity feed.
type ActivityEntry struct {
	Log         *models.MarkChangeLog `json:"log"`
	StudentName string                `json:"student_name"`
	Assessment  string                `json:"assessment"`
	Subject     string                `json:"subject"`
}

// GetRecentActivity returns the latest mark mutations across the
// school, joined with student and assessment context for display.
// An empty actorID returns activity for every actor.
func GetRecentActivity(db *sql.DB, actorID string, limit int) ([]*ActivityEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `SELECT l.id, l.mark_id, l.actor_id, l.action, l.old_value, l.new_value, l.created_at,
					 u.first_name, u.last_name,
					 s.first_name || ' ' || s.last_name AS student_name,
					 a.name AS assessment_name,
					 sub.name AS subject_name
			  FROM mark_change_logs l
			  JOIN users u ON u.id = l.actor_id
			  JOIN marks m ON m.id = l.mark_id
			  JOIN students s ON s.id = m.student_id
			  JOIN assessments a ON a.id = m.assessment_id
			  JOIN subjects sub ON sub.id = a.subject_id
			  WHERE ($1 = '' OR l.actor_id = $1::uuid)
			  ORDER BY l.created_at DESC
			  LIMIT $2`

	rows, err := db.Query(query, actorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*ActivityEntry
	for rows.Next() {
		entry := &ActivityEntry{Log: &models.MarkChangeLog{Actor: &models.User{}}}
		l := entry.Log
		err := rows.Scan(
			&l.ID, &l.MarkID, &l.ActorID, &l.Action, &l.OldValue, &l.NewValue, &l.CreatedAt,
			&l.Actor.FirstName, &l.Actor.LastName,
			&entry.StudentName, &entry.Assessment, &entry.Subject,
		)
		if err != nil {
			return nil, err
		}
		l.Actor.ID = l.ActorID
		entries = append(entries, entry)
	}
	return entries, nil
}
