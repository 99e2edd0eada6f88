// Copyright 2025 CloudWeGo Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"os"

	"github.com/cloudwego/gencoder/internal/cli"
	"github.com/cloudwego/gencoder/internal/log"
	"github.com/cloudwego/gencoder/version"
)

func main() {
	// Interrupts are left to the entrypoint executor, which stops the
	// running script on the first one.
	root := cli.NewRootCmd(version.Version, cli.DefaultEnv())
	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}
