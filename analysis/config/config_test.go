// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package config

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

//go:embed testdata
var testfsys embed.FS

func checkEqualOnNonEmptyFields(t *testing.T, cid1 CodeIdentifier, cid2 CodeIdentifier) {
	cid2c := CompileRegexes(cid2)
	if !cid1.equalOnNonEmptyFields(cid2c) {
		t.Errorf("%v should be equal modulo empty fields to %v", cid1, cid2)
	}
}

func checkNotEqualOnNonEmptyFields(t *testing.T, cid1 CodeIdentifier, cid2 CodeIdentifier) {
	cid2c := CompileRegexes(cid2)
	if cid1.equalOnNonEmptyFields(cid2c) {
		t.Errorf("%v should not be equal modulo empty fields to %v", cid1, cid2)
	}
}

func TestCodeIdentifier_equalOnNonEmptyFields_selfEquals(t *testing.T) {
	cid1 := CodeIdentifier{Package: "a", Method: "b"}
	checkEqualOnNonEmptyFields(t, cid1, cid1)
}

func TestCodeIdentifier_equalOnNonEmptyFields_emptyMatchesAny(t *testing.T) {
	cid1 := CodeIdentifier{Package: "a", Type: "b", Method: "c", Signature: "()V"}
	cid2 := CodeIdentifier{Package: "de", Type: "234jbn", Method: "ef", Signature: "(I)V"}
	cidEmpty := CodeIdentifier{}
	checkEqualOnNonEmptyFields(t, cid1, cidEmpty)
	checkEqualOnNonEmptyFields(t, cid2, cidEmpty)
}

func TestCodeIdentifier_equalOnNonEmptyFields_oneDiff(t *testing.T) {
	cid1 := CodeIdentifier{Package: "a", Type: "b"}
	cid2 := CodeIdentifier{Package: "a"}
	checkEqualOnNonEmptyFields(t, cid1, cid2)
	checkNotEqualOnNonEmptyFields(t, cid2, cid1)
}

func TestCodeIdentifier_equalOnNonEmptyFields_regexes(t *testing.T) {
	cid1 := CodeIdentifier{Package: "android/app", Type: "Activity", Method: "onCreate"}
	cid1bis := CodeIdentifier{Package: "android/app", Type: "Service", Method: "onCreate"}
	cid2 := CodeIdentifier{Package: "^android/", Type: "(Activity)|(Service)$", Method: "onCreate"}
	checkEqualOnNonEmptyFields(t, cid1, cid2)
	checkEqualOnNonEmptyFields(t, cid1bis, cid2)
	checkNotEqualOnNonEmptyFields(t, CodeIdentifier{Package: "com/android/", Type: "Activity", Method: "onCreate"},
		cid2)
}

func TestCodeIdentifier_nonRegexFallsBackToEquality(t *testing.T) {
	// "(" does not compile: the identifier keeps plain string equality
	ref := CompileRegexes(CodeIdentifier{Method: "("})
	if ref.computedRegexs != nil {
		t.Fatalf("%v should not compile to regexes", ref)
	}
	if !ref.Matches(CodeIdentifier{Method: "("}) {
		t.Errorf("%v should match an identical identifier", ref)
	}
	if ref.Matches(CodeIdentifier{Method: "(("}) {
		t.Errorf("%v should not match a different identifier", ref)
	}
}

func loadFromTestDir(filename string) (string, *Config, error) {
	filename = filepath.Join("testdata", filename)
	b, err := testfsys.ReadFile(filename)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read file %v: %v", filename, err)
	}
	config, err := LoadBytes(filename, b)
	if err != nil {
		return filename, nil, fmt.Errorf("failed to load file %v: %v", filename, err)
	}
	return filename, config, err
}

func TestNewDefault(t *testing.T) {
	c := NewDefault()
	if c.LogLevel != int(InfoLevel) {
		t.Errorf("Default log level should be info")
	}
	if c.IncludeLibrary || c.TestCGBuilder || c.StdoutCG {
		t.Errorf("Default options should all be false")
	}
	if !c.MatchPkgFilter("anything") {
		t.Errorf("Default package filter should match anything")
	}
}

func TestLoadNonExistentFileReturnsError(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "does-not-exist.yaml"))
	if c != nil || err == nil {
		t.Errorf("Expected error and nil value when trying to load non existent file.")
	}
}

func TestLoadBadFormatFileReturnsError(t *testing.T) {
	_, config, err := loadFromTestDir("bad_format.yaml")
	if config != nil || err == nil {
		t.Errorf("Expected error and nil value when trying to load a badly formatted file.")
	}
}

func TestLoadSpecWithoutArgsReturnsError(t *testing.T) {
	_, config, err := loadFromTestDir("no_args.yaml")
	if config != nil || err == nil {
		t.Errorf("Expected error and nil value when a source spec has no argument.")
	}
}

func TestLoadDefaults(t *testing.T) {
	fileName, config, err := loadFromTestDir("defaults.yaml")
	if config == nil || err != nil {
		t.Fatalf("Could not load %s: %v", fileName, err)
	}
	if config.LogLevel != int(InfoLevel) {
		t.Errorf("log level should default to info, got %d", config.LogLevel)
	}
	if len(config.SourceSpecs) != 1 || config.SourceSpecs[0].Kind != "" {
		t.Errorf("expected one source spec without kind, got %v", config.SourceSpecs)
	}
	if config.RelPath("model.yaml") != filepath.Join("testdata", "model.yaml") {
		t.Errorf("RelPath should be relative to the config file, got %s", config.RelPath("model.yaml"))
	}
}

//gocyclo:ignore
func TestLoadFullConfig(t *testing.T) {
	fileName, config, err := loadFromTestDir("full-config.yaml")
	if config == nil || err != nil {
		t.Fatalf("Could not load %s: %v", fileName, err)
	}
	if config.LogLevel != int(TraceLevel) {
		t.Error("full config should have set trace")
	}
	if !config.IncludeLibrary {
		t.Error("full config should have set include-library")
	}
	if !config.TestCGBuilder {
		t.Error("full config should have set test-cg-builder")
	}
	if !config.StdoutCG {
		t.Error("full config should have set stdout-cg")
	}
	if !config.CGBuilderWarnings {
		t.Error("full config should have set cg-builder-warnings")
	}
	if !config.SilenceWarn {
		t.Error("full config should have silence-warn set to true")
	}
	if !config.MatchPkgFilter("com/example/app") || config.MatchPkgFilter("android/app") {
		t.Error("full config pkg filter should match only com/example packages")
	}
	if len(config.SourceSpecs) != 2 {
		t.Fatalf("full config should have two source specs, got %d", len(config.SourceSpecs))
	}
	onReceive := CodeIdentifier{Package: "android/content", Type: "BroadcastReceiver", Method: "onReceive"}
	if !config.SourceSpecs[0].Method.Matches(onReceive) {
		t.Errorf("first source spec should match %v", onReceive)
	}
	onBind := CodeIdentifier{Package: "android/app", Type: "IntentService", Method: "onBind",
		Signature: "(Landroid/content/Intent;)Landroid/os/IBinder;"}
	if !config.SourceSpecs[1].Method.Matches(onBind) || config.SourceSpecs[1].Kind != "binder" {
		t.Errorf("second source spec should be a binder source matching %v", onBind)
	}
	if !config.IsSomeSource(onBind) || config.IsSomeSource(CodeIdentifier{Method: "onCreate"}) {
		t.Errorf("IsSomeSource does not match the source specs")
	}
	if !config.Verbose() {
		t.Errorf("trace level config should be verbose")
	}
}

func TestLogGroupLevels(t *testing.T) {
	c := NewDefault()
	c.LogLevel = int(WarnLevel)
	l := NewLogGroup(c)
	var buf bytes.Buffer
	l.SetAllOutput(&buf)

	l.Infof("not printed %d", 1)
	l.Debugf("not printed %d", 2)
	l.Warnf("printed warning %d", 3)
	l.Errorf("printed error %d", 4)
	out := buf.String()
	if strings.Contains(out, "not printed") {
		t.Errorf("messages below warning level should not be printed:\n%s", out)
	}
	if !strings.Contains(out, "printed warning 3") || !strings.Contains(out, "printed error 4") {
		t.Errorf("warnings and errors should be printed:\n%s", out)
	}

	buf.Reset()
	l.SetLevel(TraceLevel)
	l.Tracef("trace %s", "message")
	if !strings.Contains(buf.String(), "trace message") || !l.LogsTrace() || !l.LogsDebug() {
		t.Errorf("trace level should print traces:\n%s", buf.String())
	}
}

func TestLogGroupSilenceWarn(t *testing.T) {
	c := NewDefault()
	c.SilenceWarn = true
	l := NewLogGroup(c)
	var buf bytes.Buffer
	l.SetAllOutput(&buf)
	l.Warnf("silenced")
	if buf.Len() != 0 {
		t.Errorf("warnings should be silenced, got %q", buf.String())
	}
}
