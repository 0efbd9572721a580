package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dagger/sitesmith/internal/dagger"
)

const (
	imageBinary  = "/usr/local/bin/sitesmith"
	imageDataDir = "/data"
	imagePort    = 3000
)

// gatewayBinary compiles sitesmith with CGO enabled so the sqlite store is
// available in the image, unlike the static cross-compiled Build artifacts.
func (s *Sitesmith) gatewayBinary(version, commit string) *dagger.File {
	ldflags := []string{
		"-s",
		"-w",
		fmt.Sprintf("-X 'github.com/papercomputeco/sitesmith/pkg/utils.Version=%s'", version),
		fmt.Sprintf("-X 'github.com/papercomputeco/sitesmith/pkg/utils.Sha=%s'", commit),
		fmt.Sprintf("-X 'github.com/papercomputeco/sitesmith/pkg/utils.Buildtime=%s'", time.Now()),
	}

	return s.goContainer().
		WithExec([]string{"go", "build", "-ldflags", strings.Join(ldflags, " "), "-o", "/out/sitesmith", "./cli/sitesmith"}).
		File("/out/sitesmith")
}

// Image builds the gateway runtime image. It runs "sitesmith serve" from
// /data, so the .sitesmith directory (config, credentials, sqlite database)
// lives on whatever volume is mounted there.
func (s *Sitesmith) Image(
	// Version string embedded in the binary
	// +optional
	// +default="dev"
	version string,

	// Git commit SHA embedded in the binary
	// +optional
	// +default="unknown"
	commit string,

	// Directory of the built editor UI to serve from the gateway
	// +optional
	static *dagger.Directory,
) *dagger.Container {
	ctr := dag.Container().
		From("debian:bookworm-slim").
		WithExec([]string{"apt-get", "update"}).
		WithExec([]string{"apt-get", "install", "-y", "--no-install-recommends", "ca-certificates"}).
		WithFile(imageBinary, s.gatewayBinary(version, commit)).
		WithDirectory(imageDataDir, dag.Directory()).
		WithWorkdir(imageDataDir).
		WithEnvVariable("SITESMITH_SERVER_LISTEN", fmt.Sprintf(":%d", imagePort)).
		WithExposedPort(imagePort).
		WithLabel("org.opencontainers.image.title", "sitesmith").
		WithLabel("org.opencontainers.image.version", version).
		WithLabel("org.opencontainers.image.revision", commit)

	if static != nil {
		ctr = ctr.
			WithDirectory("/srv/ui", static).
			WithEnvVariable("SITESMITH_SERVER_STATIC_DIR", "/srv/ui")
	}

	return ctr.WithEntrypoint([]string{imageBinary, "serve"})
}

// SmokeTest starts the image as a service and checks /api/health answers.
func (s *Sitesmith) SmokeTest(ctx context.Context) (string, error) {
	gateway := s.Image("dev", "unknown", nil).AsService()

	return dag.Container().
		From("curlimages/curl:latest").
		WithServiceBinding("sitesmith", gateway).
		WithExec([]string{"curl", "-fsS", fmt.Sprintf("http://sitesmith:%d/api/health", imagePort)}).
		Stdout(ctx)
}

// Publish pushes the versioned gateway image and moves the latest tag.
func (s *Sitesmith) Publish(
	ctx context.Context,

	// Image repository without tag (e.g., "ghcr.io/papercomputeco/sitesmith")
	repository string,

	// Version string (e.g., "v1.0.0")
	version string,

	// Git commit SHA
	commit string,

	// Registry username
	username string,

	// Registry password or token
	password *dagger.Secret,

	// Directory of the built editor UI to serve from the gateway
	// +optional
	static *dagger.Directory,
) ([]string, error) {
	registry, _, _ := strings.Cut(repository, "/")
	image := s.Image(version, commit, static).
		WithRegistryAuth(registry, username, password)

	var refs []string
	for _, tag := range []string{version, "latest"} {
		ref, err := image.Publish(ctx, fmt.Sprintf("%s:%s", repository, tag))
		if err != nil {
			return refs, fmt.Errorf("could not publish %s:%s: %w", repository, tag, err)
		}
		refs = append(refs, ref)
	}

	return refs, nil
}
