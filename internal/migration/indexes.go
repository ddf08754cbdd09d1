package migration

import "github.com/Additional-Code/timeclock/internal/entity"

type index struct {
	model   any
	name    string
	columns []string
}

// lookupIndexes back the non-unique finders.
var lookupIndexes = []index{
	{model: (*entity.Customer)(nil), name: "customers_name_idx", columns: []string{"name"}},
	{model: (*entity.Developer)(nil), name: "developers_forename_idx", columns: []string{"forename"}},
	{model: (*entity.Job)(nil), name: "jobs_status_idx", columns: []string{"status"}},
	{model: (*entity.Job)(nil), name: "jobs_project_name_idx", columns: []string{"project_name"}},
	{model: (*entity.Job)(nil), name: "jobs_customer_id_idx", columns: []string{"customer_id"}},
	{model: (*entity.Job)(nil), name: "jobs_developer_id_idx", columns: []string{"developer_id"}},
	{model: (*entity.WorkingHours)(nil), name: "working_hours_developer_start_idx", columns: []string{"developer_id", "work_start"}},
}
