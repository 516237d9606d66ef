package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactor/internal/config"
	"github.com/vango-dev/reactor/pkg/host"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/render"
	"github.com/vango-dev/reactor/pkg/vdom"
)

func demoCmd(g *globals) *cobra.Command {
	var watch string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the todo demo on an in-memory host",
		Long: `Mount the todo demo on an in-memory host and print the host
operations issued for every step.

Without --watch a scripted sequence of edits runs and the final
host tree is printed. With --watch the list is read from a JSON
array of {"id", "title", "done"} objects and re-read whenever the
file is written, until interrupted.

Examples:
  reactor demo
  reactor demo --watch todos.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			return runDemo(cmd.Context(), cmd.OutOrStdout(), cfg, logger, watch)
		},
	}

	cmd.Flags().StringVarP(&watch, "watch", "w", "", "JSON file feeding the list")

	return cmd
}

// demo is the todo app mounted on a memory host.
type demo struct {
	rt        *reactive.Runtime
	mem       *host.Memory
	r         *render.Renderer
	container host.Handle
	store     *todoStore
	out       io.Writer
}

func newDemo(cfg *config.Config, logger *slog.Logger, out io.Writer, initial []todo) *demo {
	d := &demo{out: out, mem: host.NewMemory()}
	d.rt = newRuntime(cfg, logger)
	d.r = render.New(d.rt, d.mem, rendererOptions(logger, nil, cfg.Tracing.Enabled)...)
	d.container = d.mem.NewContainer("window")
	d.store = newTodoStore(d.rt, initial)
	return d
}

func (d *demo) mount(ctx context.Context) {
	d.rt.Do(func() {
		d.r.Render(ctx, todoApp(d.store), d.container)
	})
	d.report("mount")
}

// step runs fn on the runtime and prints the host operations it caused.
func (d *demo) step(name string, fn func()) {
	d.rt.Do(fn)
	d.report(name)
}

func (d *demo) report(name string) {
	ops := d.mem.TakeLog()
	fmt.Fprintf(d.out, "== %s (%d ops)\n", name, len(ops))
	for _, op := range ops {
		fmt.Fprintf(d.out, "  %s\n", op)
	}
}

// click fires click on the button labelled text.
func (d *demo) click(text string) {
	if found := d.mem.Find("button", vdom.TextProp, vdom.Text(text)); len(found) > 0 {
		d.mem.Fire(found[0], "click")
	}
}

func (d *demo) close() {
	d.rt.Do(d.r.Close)
}

func runDemo(ctx context.Context, out io.Writer, cfg *config.Config, logger *slog.Logger, watch string) error {
	if watch != "" {
		return watchDemo(ctx, out, cfg, logger, watch)
	}

	d := newDemo(cfg, logger, out, sampleTodos())
	defer d.close()
	d.mount(ctx)

	d.step("add", func() { d.store.add("write the docs") })
	d.step("toggle a", func() { d.store.toggle("a") })
	d.step("move last to front", func() { d.store.move(len(d.store.items.Peek())-1, 0) })
	d.step("batch: remove b, toggle c", func() {
		d.rt.Batch(func() {
			d.store.remove("b")
			d.store.toggle("c")
		})
	})
	d.step("click clear done", func() { d.click("clear done") })
	d.step("no-op write", func() { d.store.replace(d.store.items.Peek()) })

	fmt.Fprintf(out, "\n%s", d.mem.Dump(d.container))
	return nil
}

// watchDemo feeds the list from a JSON file until ctx is done.
func watchDemo(ctx context.Context, out io.Writer, cfg *config.Config, logger *slog.Logger, path string) error {
	updates, err := newFileWatcher(path, logger).Watch(ctx)
	if err != nil {
		return err
	}

	d := newDemo(cfg, logger, out, nil)
	defer d.close()
	d.mount(ctx)

	for data := range updates {
		var items []todo
		if err := json.Unmarshal(data, &items); err != nil {
			logger.Warn("ignoring invalid todo file", "path", path, "error", err)
			continue
		}
		d.step("reload "+path, func() { d.store.replace(items) })
	}
	return nil
}
