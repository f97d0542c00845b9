package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/moiety/codec"
	"github.com/wippyai/moiety/errors"
	"github.com/wippyai/moiety/media"
	"github.com/wippyai/moiety/script"
	"github.com/wippyai/moiety/vaht"
	"github.com/wippyai/moiety/view"
)

func parseID(s string) (uint16, error) {
	id, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, errors.InvalidInput(errors.PhaseResolve, fmt.Sprintf("resource id %q: want 0-65535", s))
	}
	return uint16(id), nil
}

// summarize replaces a payload's bytes with their size and digest so it can
// be printed as text.
func summarize(v any) any {
	p, ok := v.(view.Payload)
	if !ok {
		return v
	}
	return map[string]any{
		"content_type": p.ContentType,
		"bytes":        len(p.Data),
		"blake3":       media.DigestBytes(p.Data),
	}
}

func extension(contentType string) string {
	switch contentType {
	case view.ContentPNG:
		return ".png"
	case view.ContentWAV:
		return ".wav"
	case view.ContentQuickTime:
		return ".mov"
	default:
		return ".bin"
	}
}

func (a *app) render(stack, tag string, id uint16) (any, error) {
	var out any
	err := a.resolver.Use(stack, tag, id, func(t vaht.Typed) error {
		v, err := view.RenderWithOptions(t, view.Options{MaxPayload: a.cfg.MaxPayload})
		out = v
		return err
	})
	return out, err
}

func newTypesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types <stack>",
		Short: "List the resource types of every archive in a stack",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			files, err := a.resolver.Files(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, path := range files {
				arch, err := a.resolver.Archive(path)
				if errors.IsOpenFailure(err) {
					fmt.Fprintf(w, "%s: missing\n", path)
					continue
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s: %s\n", path, strings.Join(arch.ResourceTypes(), " "))
			}
			return nil
		}),
	}
}

func newDumpCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dump <stack> <tag> <id>",
		Short: "Print a resource as structured data",
		Long: "Print a resource as structured data. Media resources are shown as " +
			"their content type, size and BLAKE3 digest; use export for the bytes.",
		Args: cobra.ExactArgs(3),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			f, err := codec.ParseFormat(format)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if f.Binary() && isTerminal(w) {
				return errors.InvalidInput(errors.PhaseEncode, "refusing to write "+string(f)+" to a terminal")
			}
			id, err := parseID(args[2])
			if err != nil {
				return err
			}
			v, err := a.render(args[0], args[1], id)
			if err != nil {
				return err
			}
			return codec.Encode(w, f, summarize(v))
		}),
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(codec.YAML), "output format: json, cbor or yaml")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		output string
		format string
	)
	cmd := &cobra.Command{
		Use:   "export <stack> <tag> <id>",
		Short: "Write a resource to a file",
		Long: "Write a resource to a file. Media resources are written as PNG, WAV " +
			"or their raw stream; other kinds are encoded with --format. The default " +
			"file name is <stack>-<tag>-<id> with a matching extension; -o - writes to stdout.",
		Args: cobra.ExactArgs(3),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			f, err := codec.ParseFormat(format)
			if err != nil {
				return err
			}
			id, err := parseID(args[2])
			if err != nil {
				return err
			}
			v, err := a.render(args[0], args[1], id)
			if err != nil {
				return err
			}

			var (
				data   []byte
				ext    string
				binary bool
			)
			if p, ok := v.(view.Payload); ok {
				data, ext, binary = p.Data, extension(p.ContentType), true
			} else {
				if data, err = codec.Marshal(f, v); err != nil {
					return err
				}
				ext, binary = f.Extension(), f.Binary()
			}

			if output == "-" {
				w := cmd.OutOrStdout()
				if binary && isTerminal(w) {
					return errors.InvalidInput(errors.PhaseEncode, "refusing to write binary data to a terminal")
				}
				_, err := w.Write(data)
				return err
			}
			if output == "" {
				output = fmt.Sprintf("%s-%s-%d%s", args[0], args[1], id, ext)
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			a.log.Debug("exported resource", zap.String("path", output), zap.Int("bytes", len(data)))
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", output, len(data))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path, - for stdout")
	cmd.Flags().StringVarP(&format, "format", "f", string(codec.JSON), "encoding for non-media kinds: json, cbor or yaml")
	return cmd
}

func newScriptCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "script <stack> <CARD|HSPT> <id>",
		Short: "Print the structured script of a card or of each hotspot",
		Args:  cobra.ExactArgs(3),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[2])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			return a.resolver.Use(args[0], args[1], id, func(t vaht.Typed) error {
				switch v := t.(type) {
				case *vaht.Card:
					s, err := v.Script()
					if err != nil {
						return err
					}
					defer s.Close()
					return printScript(w, "", s)
				case *vaht.Hotspots:
					for i := 1; i <= v.Count(); i++ {
						name, err := v.Name(i)
						if err != nil {
							return err
						}
						fmt.Fprintf(w, "hotspot %d %s\n", i, name)
						s, err := v.Script(i)
						if err != nil {
							return err
						}
						err = printScript(w, "  ", s)
						s.Close()
						if err != nil {
							return err
						}
					}
					return nil
				default:
					return errors.Unsupported(errors.PhaseScript, fmt.Sprintf("%s resources carry no script", args[1]))
				}
			})
		}),
	}
}

func printScript(w io.Writer, indent string, s *vaht.Script) error {
	tree, err := script.Structure[*vaht.Command](s)
	if err != nil {
		return err
	}
	for _, h := range tree.Handlers {
		fmt.Fprintf(w, "%s%s:\n", indent, h.Event)
		printNodes(w, indent+"  ", h.Commands)
	}
	return nil
}

func printNodes(w io.Writer, indent string, nodes []script.Node) {
	for _, n := range nodes {
		fmt.Fprintf(w, "%s%s\n", indent, n)
		if !n.Branch {
			continue
		}
		for _, v := range n.Values {
			fmt.Fprintf(w, "%s  case %d:\n", indent, v)
			printNodes(w, indent+"    ", n.Cases[v])
		}
	}
}
