package app

import (
	"time"

	"github.com/ronsystem/fcpdigital-backend/internal/app/api/server"
	"github.com/ronsystem/fcpdigital-backend/internal/app/service/auditlog"
	"github.com/ronsystem/fcpdigital-backend/internal/app/service/calls"
	"github.com/ronsystem/fcpdigital-backend/internal/app/service/clients"
	"github.com/ronsystem/fcpdigital-backend/internal/app/service/leads"
	"github.com/ronsystem/fcpdigital-backend/internal/app/service/provisioning"
	"github.com/ronsystem/fcpdigital-backend/internal/app/service/usage"
	"github.com/ronsystem/fcpdigital-backend/internal/platform/db"
	"github.com/ronsystem/fcpdigital-backend/internal/platform/ronos"
	"github.com/ronsystem/fcpdigital-backend/internal/platform/stripegw"
	"github.com/ronsystem/fcpdigital-backend/pkg/config"
	"github.com/ronsystem/fcpdigital-backend/pkg/logger"

	"go.uber.org/fx"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	server.Module,
	stripegw.Module,
	ronos.Module,
	auditlog.Module,
	provisioning.Module,
	clients.Module,
	calls.Module,
	usage.Module,
	leads.Module,
)
