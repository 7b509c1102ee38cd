package sbt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArgsFullInvocation(t *testing.T) {
	inv := Invocation{
		Version: "2.13.12",
		Workdir: "/home/ci/widgets",
		Env: map[string]string{
			"NEXUS_USERNAME": "deploy",
			"NEXUS_HOST":     "localhost:8081",
		},
	}

	args := Args("sbtscala/scala-sbt:latest", inv)
	require.Equal(t, []string{
		"run", "--rm",
		"-v", "/home/ci/widgets:/workspace",
		"-w", "/workspace",
		"-e", "NEXUS_HOST=localhost:8081",
		"-e", "NEXUS_USERNAME=deploy",
		"sbtscala/scala-sbt:latest",
		"sbt", "++2.13.12", "publish",
	}, args)
}

func TestArgsCustomCommand(t *testing.T) {
	args := Args("img", Invocation{Version: "3.3.1", Command: "publishSigned"})
	require.Equal(t, []string{"run", "--rm", "img", "sbt", "++3.3.1", "publishSigned"}, args)
}

func TestArgsDeterministicEnvOrder(t *testing.T) {
	inv := Invocation{
		Version: "3.3.1",
		Env: map[string]string{
			"NEXUS_URL":      "http://localhost:8081/repository/maven-releases/",
			"NEXUS_HOST":     "localhost:8081",
			"NEXUS_PASSWORD": "hunter2",
			"NEXUS_USERNAME": "deploy",
		},
	}

	first := Args("img", inv)
	for i := 0; i < 16; i++ {
		require.Equal(t, first, Args("img", inv))
	}
}
