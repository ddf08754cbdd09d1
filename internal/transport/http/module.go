package http

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/timeclock/internal/transport/http/customer"
	"github.com/Additional-Code/timeclock/internal/transport/http/developer"
	"github.com/Additional-Code/timeclock/internal/transport/http/job"
	"github.com/Additional-Code/timeclock/internal/transport/http/pay"
	"github.com/Additional-Code/timeclock/internal/transport/http/workinghours"
)

// Module registers the REST handlers for every resource.
var Module = fx.Options(
	customer.Module,
	developer.Module,
	job.Module,
	pay.Module,
	workinghours.Module,
)
