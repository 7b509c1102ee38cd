// SPDX-FileCopyrightText: Copyright © 2024-2026 crosspub developers
//
// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"fmt"
	"os"
	"regexp"

	"github.com/arvikon/crosspub/utils"
)

var (
	crossRe  = regexp.MustCompile(`(?m)^\s*(?:ThisBuild\s*/\s*)?crossScalaVersions\s*:=\s*(?:Seq|List)\(([^)]*)\)`)
	scalaRe  = regexp.MustCompile(`(?m)^\s*(?:ThisBuild\s*/\s*)?scalaVersion\s*:=\s*"([^"]+)"`)
	verRe    = regexp.MustCompile(`(?m)^\s*(?:ThisBuild\s*/\s*)?version\s*:=\s*"([^"]+)"`)
	quotedRe = regexp.MustCompile(`"([^"]+)"`)
)

// Targets parses the cross Scala versions out of a build.sbt file. When no
// crossScalaVersions setting is present, the single scalaVersion is used
// instead. Descriptor order is kept, duplicates collapse.
func Targets(path string) (versions []string, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("descriptor.Targets: failed to read %s: %w", path, err)
		return
	}

	if m := crossRe.FindSubmatch(raw); m != nil {
		for _, q := range quotedRe.FindAllSubmatch(m[1], -1) {
			versions = append(versions, string(q[1]))
		}
	} else if m := scalaRe.FindSubmatch(raw); m != nil {
		versions = append(versions, string(m[1]))
	}

	if len(versions) == 0 {
		err = fmt.Errorf("descriptor.Targets: no cross Scala versions found in %s", path)
		return
	}

	versions = utils.Uniq(versions)
	return
}

// ProjectVersion reads the published artifact version, usually kept in a
// standalone version.sbt.
func ProjectVersion(path string) (version string, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("descriptor.ProjectVersion: failed to read %s: %w", path, err)
		return
	}

	m := verRe.FindSubmatch(raw)
	if m == nil {
		err = fmt.Errorf("descriptor.ProjectVersion: no version setting found in %s", path)
		return
	}

	version = string(m[1])
	return
}
