// saju 命令行计算四柱，使用内置历法
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gogwan-api/internal/lunar"
	"gogwan-api/internal/saju"
	"gogwan-api/internal/service"

	"github.com/bytedance/sonic"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type options struct {
	date   string
	hour   int
	gender string
	lunar  bool
	leap   bool
	json   bool
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "saju",
		Short:         "Compute the four pillars, element tally and life cycle for a birth date",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.date, "date", "", "birth date, YYYY-MM-DD")
	f.IntVar(&opts.hour, "hour", -1, "birth hour, 0-23")
	f.StringVar(&opts.gender, "gender", "", "male or female")
	f.BoolVar(&opts.lunar, "lunar", false, "date is a lunar date")
	f.BoolVar(&opts.leap, "leap", false, "lunar date is in a leap month")
	f.BoolVar(&opts.json, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("hour")
	_ = cmd.MarkFlagRequired("gender")

	return cmd
}

func run(cmd *cobra.Command, opts options) error {
	g, err := saju.ParseGender(opts.gender)
	if err != nil {
		return err
	}

	in := saju.BirthInput{Hour: opts.hour, Lunar: opts.lunar}
	if opts.lunar {
		d, err := saju.ParseLunarDate(opts.date, opts.leap)
		if err != nil {
			return err
		}
		in.Year, in.Month, in.Day, in.LeapMonth = d.Year, d.Month, d.Day, d.Leap
	} else {
		d, err := saju.ParseSolarDate(opts.date)
		if err != nil {
			return err
		}
		in.Year, in.Month, in.Day = d.Year, d.Month, d.Day
	}

	fortune, err := saju.NewCalculator(lunar.NewEmbedded()).ComputeFortune(cmd.Context(), in, g)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.json {
		data, err := sonic.ConfigStd.MarshalIndent(service.NewFortuneView(fortune), "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	return printText(out, fortune)
}

func printText(w io.Writer, f *saju.Fortune) error {
	var b strings.Builder
	fmt.Fprintf(&b, "solar  %s\nlunar  %s\nhour   %d\ngender %s\n\n", f.Solar, f.Lunar, f.Hour, f.Gender)

	fmt.Fprintf(&b, "%-6s %-6s %-6s %-6s\n", "hour", "day", "month", "year")
	fmt.Fprintf(&b, "%-6s %-6s %-6s %-6s\n",
		f.Pillars.Hour.Hangul(), f.Pillars.Day.Hangul(), f.Pillars.Month.Hangul(), f.Pillars.Year.Hangul())
	fmt.Fprintf(&b, "%-6s %-6s %-6s %-6s\n\n",
		f.Pillars.Hour, f.Pillars.Day, f.Pillars.Month, f.Pillars.Year)

	b.WriteString("elements ")
	b.WriteString(strings.Join(lo.Map(saju.Elements(), func(e saju.Element, _ int) string {
		return fmt.Sprintf("%s=%d", e, f.Elements.Count(e))
	}), " "))
	b.WriteString("\n")

	for _, r := range f.Relations {
		fmt.Fprintf(&b, "%-5s %s %s\n", r.Position, r.Stem, lo.Ternary(r.Self, "self", r.Relation.String()))
	}

	b.WriteString("cycle ")
	b.WriteString(strings.Join(lo.Map(f.LifeCycle, func(p saju.LifeCyclePillar, _ int) string {
		return fmt.Sprintf("%d:%s", p.StartAge, p.Pillar)
	}), " "))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
