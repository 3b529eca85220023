// Package catalog composes the built-in tool set.
package catalog

import (
	"fmt"

	"github.com/Cyclone1070/terminus/internal/config"
	"github.com/Cyclone1070/terminus/internal/tool"
	"github.com/Cyclone1070/terminus/internal/tool/directory"
	"github.com/Cyclone1070/terminus/internal/tool/file"
	"github.com/Cyclone1070/terminus/internal/tool/fsutil"
	"github.com/Cyclone1070/terminus/internal/tool/git"
	"github.com/Cyclone1070/terminus/internal/tool/search"
	"github.com/Cyclone1070/terminus/internal/tool/shell"
	"github.com/Cyclone1070/terminus/internal/tool/todo"
)

// Tools builds every built-in tool. todos backs the plan tools and is shared
// with whoever renders the plan.
func Tools(cfg *config.Config, todos *todo.Store) []tool.Tool {
	fs := fsutil.NewOS()
	executor := shell.NewExecutor(cfg.Tools.DefaultMaxCommandOutputSize)

	var all []tool.Tool
	all = append(all, file.New(fs, cfg).All()...)
	all = append(all, directory.New(fs, cfg).All()...)
	all = append(all, search.New(fs, cfg).All()...)
	all = append(all, shell.New(executor, cfg).RunCommand())
	all = append(all, git.New().All()...)
	all = append(all, todo.New(todos).All()...)
	return all
}

// Register adds the built-in tools to reg.
func Register(reg *tool.Registry, cfg *config.Config, todos *todo.Store) error {
	for _, t := range Tools(cfg, todos) {
		if err := reg.Register(t); err != nil {
			return fmt.Errorf("register %s: %w", t.Descriptor().Name, err)
		}
	}
	return nil
}
