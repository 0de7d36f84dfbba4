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

package main

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-droid-tools/cmd/argot/seed"
	"github.com/awslabs/ar-droid-tools/cmd/argot/tools"
	"github.com/awslabs/ar-droid-tools/cmd/argot/views"
)

const usage = `Argot: Automated Reasoning Droid Tools
Usage:
  argot [tool] [options] [Go package path(s)]
Tools:
  - seed: builds the call graph and prints the taint facts seeded by the source specifications
  - views: builds the call graph and prints the application, one-hop and boundary views
Examples:
  Seed a program model: argot seed -config config.yaml -model program.yaml
  Seed Go packages: argot seed -config config.yaml -go ./...
  Print the views of a model: argot views -config config.yaml -model program.yaml`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(2)
	}

	// hardcode help flag
	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}

	// hardcode version flag
	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(tools.Version)
		return
	}

	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "seed":
		flags, err := seed.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		status, err := seed.Run(flags)
		if err != nil {
			errExit(err)
		}
		os.Exit(status)
	case "views":
		flags, err := views.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := views.Run(flags); err != nil {
			errExit(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "error: unexpected command: %v\n", cmd)
		fmt.Fprintf(os.Stderr, "usage:\n%s\n", usage)
		os.Exit(2)
	}
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	hint := tools.HintForErrorMessage(err.Error())
	if hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	os.Exit(2)
}
