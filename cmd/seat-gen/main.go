// Copyright 2025 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "seat-gen",
		Usage: "Utility for dividing capacity-limited items among agents",
		Commands: []*cli.Command{
			divideCmd,
			evalCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Println("Error: ", err)
		os.Exit(1)
	}
}

var divideCmd = &cli.Command{
	Name:    "divide",
	Usage:   "Divide an instance with a chosen algorithm",
	Aliases: []string{"d"},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "instance",
			Required: true,
			Usage:    "specify the input instance.json",
		},
		&cli.StringFlag{
			Name:     "alloc",
			Required: true,
			Usage:    "specify the output alloc.json",
		},
		&cli.StringFlag{
			Name:  "algo",
			Value: "round-robin",
			Usage: "round-robin | serial | bidirectional | spo | matching | matching-adjusted",
		},
		&cli.Float64Flag{
			Name:  "normalize",
			Usage: "scale each agent's valuations to this total before dividing",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "trace every pick and round",
		},
	},
	Action: func(ctx *cli.Context) error {
		return doDivide(ctx.String("instance"), ctx.String("alloc"),
			ctx.String("algo"), ctx.Float64("normalize"), ctx.Bool("verbose"))
	},
}

var evalCmd = &cli.Command{
	Name:    "eval",
	Usage:   "Evaluate fairness metrics of an allocation",
	Aliases: []string{"e"},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "instance",
			Required: true,
			Usage:    "specify the input instance.json",
		},
		&cli.StringFlag{
			Name:     "alloc",
			Required: true,
			Usage:    "specify the input alloc.json",
		},
		&cli.Float64Flag{
			Name:  "normalize",
			Usage: "scale each agent's valuations to this total before evaluating",
		},
	},
	Action: func(ctx *cli.Context) error {
		return doEval(ctx.String("instance"), ctx.String("alloc"), ctx.Float64("normalize"))
	},
}
