package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vtree/internal/config"
	"github.com/vango-dev/vtree/pkg/protocol"
	"github.com/vango-dev/vtree/pkg/render"
	"github.com/vango-dev/vtree/pkg/vdom"
	"github.com/vango-dev/vtree/pkg/vtest"
)

func sampleCmd(global *globalOptions) *cobra.Command {
	opts := &benchOptions{}
	var keyAttr string

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print one random tree pair and its diff",
		Long: `Generate a single random tree and an edit of it, using the bench
workload settings, and print both trees as HTML followed by the diff
between them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			opts.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			gen := vtest.NewGenerator(cfg.Bench.Seed, cfg.Bench.GenOptions())
			prev := gen.Tree()
			next := gen.Mutate(prev, cfg.Bench.MutationRate)
			d := vdom.Diff(prev, next)

			r := render.NewRenderer(render.RendererConfig{Pretty: true, KeyAttr: keyAttr})
			out := cmd.OutOrStdout()
			for _, part := range []struct {
				title string
				el    vdom.Element
			}{{"previous", prev}, {"next", next}} {
				html, err := r.RenderToString(part.el)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "<!-- %s: %d elements -->\n%s\n", part.title, vdom.Count(part.el), html)
			}

			frame := protocol.DiffFrameOf(&protocol.DiffFrame{Seq: 1, Diff: d}).Encode()
			fmt.Fprintf(out, "# diff: cost %d, %d frame bytes\n", costOf(d), len(frame))
			return render.WriteDiff(out, d)
		},
	}

	flags := cmd.Flags()
	flags.Uint64Var(&opts.seed, "seed", config.DefaultSeed, "random seed")
	flags.StringVarP(&opts.profile, "profile", "p", config.DefaultProfile, "tree shape: small, default, wide or deep")
	flags.IntVar(&opts.depth, "depth", 0, "maximum parent nesting, overrides the profile")
	flags.IntVar(&opts.fanout, "fanout", 0, "maximum children per parent, overrides the profile")
	flags.Float64VarP(&opts.mutationRate, "rate", "r", config.DefaultMutationRate, "probability that a parent is edited")
	flags.StringVar(&keyAttr, "key-attr", "data-key", "attribute carrying element keys in the HTML, empty to omit")

	return cmd
}

func costOf(d *vdom.DiffTree) uint64 {
	if d == nil {
		return 0
	}
	return d.Cost
}
