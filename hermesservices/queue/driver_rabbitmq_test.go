package queue_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lunagic/hermes/hermesservices/queue"
	"github.com/lunagic/hermes/hermestest"
)

func TestDriverRabbitMQ(t *testing.T) {
	t.Parallel()
	testSuite(t, setupRabbitMQ(t, "3-alpine"))
}

func TestDriverRabbitMQ_4(t *testing.T) {
	t.Parallel()
	testSuite(t, setupRabbitMQ(t, "4-alpine"))
}

func setupRabbitMQ(t *testing.T, tag string) queue.Driver {
	user := uuid.NewString()
	pass := uuid.NewString()
	vhost := "hermes-" + uuid.NewString()[0:8]

	driver := hermestest.GetDockerService(t,
		hermestest.DockerServiceConfig[queue.Driver]{
			DockerImage:    "rabbitmq",
			DockerImageTag: tag,
			InternalPort:   5672,
			Environment: map[string]string{
				"RABBITMQ_DEFAULT_USER":  user,
				"RABBITMQ_DEFAULT_PASS":  pass,
				"RABBITMQ_DEFAULT_VHOST": vhost,
			},
			Builder: func(host string, port int) (queue.Driver, error) {
				return queue.NewDriverRabbitMQ(queue.DriverRabbitMQConfig{
					Host:  host,
					Port:  port,
					User:  user,
					Pass:  pass,
					VHost: vhost,
				})
			},
		},
	)

	t.Cleanup(func() {
		_ = driver.Close()
	})

	return driver
}
