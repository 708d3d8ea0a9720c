package database_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lunagic/hermes/hermesservices/database"
	"github.com/lunagic/hermes/hermestest"
)

func TestDriverPostgres(t *testing.T) {
	t.Parallel()

	for _, tag := range []string{"17-alpine", "16-alpine", "15-alpine"} {
		t.Run(tag, func(t *testing.T) {
			t.Parallel()
			testSuite(t, setupPostgres(t, tag), database.WithConnectionLimits(4, 2, time.Minute))
		})
	}
}

func setupPostgres(t *testing.T, tag string) database.Driver {
	name := "hermes_" + uuid.NewString()[0:8]
	pass := uuid.NewString()
	user := "hermes"

	return hermestest.GetDockerService(t, hermestest.DockerServiceConfig[database.Driver]{
		DockerImage:    "postgres",
		DockerImageTag: tag,
		InternalPort:   5432,
		Environment: map[string]string{
			"POSTGRES_USER":     user,
			"POSTGRES_PASSWORD": pass,
			"POSTGRES_DB":       name,
		},
		Builder: func(host string, port int) (database.Driver, error) {
			return reachable(database.NewDriverPostgres(database.DriverPostgresConfig{
				Host:    host,
				Port:    port,
				User:    user,
				Pass:    pass,
				Name:    name,
				SSLMode: "disable",
			}))
		},
	})
}
