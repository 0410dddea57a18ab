// Copyright 2025 Ecotoss
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cor

import (
	"context"
	"errors"
	"testing"

	"github.com/zeebo/assert"
)

// appendCommand appends its suffix to the piped string value.
type appendCommand struct {
	BaseCommand
	suffix string
	failed bool
}

func newAppendCommand(name, suffix string, failed bool) *appendCommand {
	return &appendCommand{BaseCommand: *NewBaseCommand(name), suffix: suffix, failed: failed}
}

func (c *appendCommand) Execute(context Context) {
	if c.failed {
		context.AddError(c.GetName(), errors.New("forced failure"))
		return
	}
	in := context.Get(c.GetInputParam()).(string)
	context.Add(c.GetOutputParam(), in+c.suffix)
}

func newChainContext(seed string) Context {
	corCtx := NewBaseContext()
	corCtx.SetContext(context.Background())
	corCtx.Add(CtxIn, seed)
	return corCtx
}

func TestChainPipesOutputToInput(t *testing.T) {
	chain := NewBaseChain("pipe_test")
	chain.AddCommand(newAppendCommand("first", "-a", false))
	chain.AddCommand(newAppendCommand("second", "-b", false))

	corCtx := newChainContext("seed")
	chain.Execute(corCtx)

	assert.False(t, corCtx.HasErrors())
	assert.Equal(t, "seed-a-b", corCtx.Get(CtxIn))
}

func TestChainStopsOnError(t *testing.T) {
	tail := newAppendCommand("tail", "-never", false)
	chain := NewBaseChain("stop_test")
	chain.AddCommand(newAppendCommand("boom", "", true))
	chain.AddCommand(tail)

	corCtx := newChainContext("seed")
	chain.Execute(corCtx)

	assert.True(t, corCtx.HasErrors())
	assert.NotNil(t, corCtx.GetErrors()["boom"])
	assert.Nil(t, corCtx.Get(CtxOut))
}

// gatedCommand never runs; its precondition always fails.
type gatedCommand struct {
	BaseCommand
}

func (c *gatedCommand) IsExecutable(Context) bool { return false }

func (c *gatedCommand) Execute(context Context) {
	context.Add(c.GetOutputParam(), "should never appear")
}

func TestChainPreservesValueAcrossSkippedCommand(t *testing.T) {
	chain := NewBaseChain("skip_pipe_test")
	chain.AddCommand(newAppendCommand("first", "-a", false))
	chain.AddCommand(&gatedCommand{BaseCommand: *NewBaseCommand("gated")})
	chain.AddCommand(newAppendCommand("last", "-b", false))

	corCtx := newChainContext("seed")
	chain.Execute(corCtx)

	assert.False(t, corCtx.HasErrors())
	assert.Equal(t, "seed-a-b", corCtx.Get(CtxIn))
}

func TestChainSkipsNonExecutableCommand(t *testing.T) {
	chain := NewBaseChain("skip_test")
	chain.AddCommand(newAppendCommand("only", "-x", false))

	// No seed value: the command's precondition fails, no error recorded.
	corCtx := NewBaseContext()
	corCtx.SetContext(context.Background())
	chain.Execute(corCtx)

	assert.False(t, corCtx.HasErrors())
	assert.Nil(t, corCtx.Get(CtxIn))
}

func TestContextErrorBookkeeping(t *testing.T) {
	corCtx := NewBaseContext()
	assert.False(t, corCtx.HasErrors())

	corCtx.AddError("step", errors.New("bad"))
	assert.True(t, corCtx.HasErrors())
	assert.Equal(t, 1, len(corCtx.GetErrors()))

	corCtx.Add("k", "v")
	assert.Equal(t, "v", corCtx.Get("k"))
	corCtx.Remove("k")
	assert.Nil(t, corCtx.Get("k"))
}
