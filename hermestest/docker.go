package hermestest

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/ory/dockertest"
)

// DockerServiceConfig describes a container backed dependency. Builder is
// retried until it succeeds or MaxWait passes.
type DockerServiceConfig[T any] struct {
	DockerImage    string
	DockerImageTag string
	InternalPort   int
	Environment    map[string]string
	MaxWait        time.Duration
	Builder        func(host string, port int) (T, error)
}

func (service DockerServiceConfig[T]) env() []string {
	env := []string{}
	for k, v := range service.Environment {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	return env
}

// GetDockerService starts the container, waits for Builder to connect and
// purges the container when the test ends. Skipped with -short.
func GetDockerService[T any](
	t *testing.T,
	service DockerServiceConfig[T],
) T {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping long-running test in short mode.")
	}

	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("Could not construct pool: %s", err)
	}

	if service.MaxWait > 0 {
		pool.MaxWait = service.MaxWait
	}

	if err := pool.Client.Ping(); err != nil {
		t.Fatalf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.Run(
		service.DockerImage,
		service.DockerImageTag,
		service.env(),
	)
	if err != nil {
		t.Fatalf("Could not start %s:%s: %s", service.DockerImage, service.DockerImageTag, err)
	}

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Errorf("Could not purge resource: %s", err)
		}
	})

	host := dockerHost()
	port, err := strconv.Atoi(resource.GetPort(fmt.Sprintf("%d/tcp", service.InternalPort)))
	if err != nil {
		t.Fatalf("Could not read the mapped port of %s: %s", service.DockerImage, err)
	}

	var built T
	if err := pool.Retry(func() error {
		var err error
		built, err = service.Builder(host, port)

		return err
	}); err != nil {
		t.Fatalf("Could not connect to %s: %s", service.DockerImage, err)
	}

	return built
}

// dockerHost is the host published ports are reachable on.
func dockerHost() string {
	dockerURL, err := url.Parse(os.Getenv("DOCKER_HOST"))
	if err != nil || dockerURL.Scheme != "tcp" || dockerURL.Hostname() == "" {
		return "localhost"
	}

	return dockerURL.Hostname()
}
