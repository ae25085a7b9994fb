// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package configfile loads the two external settings this package exposes
// (spec.md §6): synchronous_standby_names and synchronous_commit, from a
// TOML file.
package configfile

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"code.hybscloud.com/syncrepl"
)

// Document is the on-disk shape of the replication settings.
//
//	synchronous_standby_names = "standby1, standby2"
//	synchronous_commit = "remote_flush"
type Document struct {
	SynchronousStandbyNames string `toml:"synchronous_standby_names"`
	SynchronousCommit       string `toml:"synchronous_commit"`
}

// Settings is the validated, in-memory form of a loaded Document.
type Settings struct {
	Names      *syncrepl.NameList
	CommitMode syncrepl.WaitMode
}

// Load reads and validates a TOML document at path.
func Load(path string) (*Settings, error) {
	var doc Document
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("configfile: decode %s: %w", path, err)
	}
	return fromDocument(doc)
}

// Decode validates an already-parsed Document, for callers that embed it in
// a larger configuration file and decode it themselves.
func Decode(doc Document) (*Settings, error) {
	return fromDocument(doc)
}

func fromDocument(doc Document) (*Settings, error) {
	names, err := syncrepl.ValidateNames(doc.SynchronousStandbyNames)
	if err != nil {
		return nil, fmt.Errorf("configfile: %w", err)
	}
	return &Settings{
		Names:      names,
		CommitMode: parseCommitLevel(doc.SynchronousCommit),
	}, nil
}

// parseCommitLevel maps the textual synchronous_commit setting onto
// syncrepl.SynchronousCommitLevel before handing it to AssignCommitMode
// (spec.md §4.5); anything unrecognized is "off", matching the original's
// fallback behavior of disabling the wait.
func parseCommitLevel(raw string) syncrepl.WaitMode {
	var level syncrepl.SynchronousCommitLevel
	switch raw {
	case "remote_write":
		level = syncrepl.CommitRemoteWrite
	case "remote_flush", "on":
		level = syncrepl.CommitRemoteFlush
	case "remote_apply":
		level = syncrepl.CommitRemoteApply
	case "local":
		level = syncrepl.CommitLocal
	default:
		level = syncrepl.CommitOff
	}
	return syncrepl.AssignCommitMode(level)
}

// MustLoad is Load, panicking on error; useful at process startup where a
// malformed config file should prevent the process from ever serving
// traffic.
func MustLoad(path string) *Settings {
	s, err := Load(path)
	if err != nil {
		panic(err)
	}
	return s
}
