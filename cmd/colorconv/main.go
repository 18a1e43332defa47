// RGB565 colour converter and calibration tooling console.
package main

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/regorov/colorconv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli"
)

// EnvVarPrefix holds environment variables prefix related to application.
const (
	EnvVarPrefix = "COLORCONV_"
)

// Exit codes of the convert action.
const (
	exitOK    = 0
	exitUsage = 1
	exitRange = 2
)

var errUsage = errors.New("incorrect usage")

func main() {
	// .env is optional, real environment wins over it.
	_ = godotenv.Load()

	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// application carries output writers and logger shared by actions.
type application struct {
	stdout io.Writer
	stderr io.Writer
	logger zerolog.Logger
}

func run(args []string, stdout, stderr io.Writer) int {
	a := &application{stdout: stdout, stderr: stderr}
	return exitCode(a.newApp().Run(channelArgs(args)))
}

// channelArgs inserts "--" in front of the first integer argument of the
// convert action, so a negative channel value is not taken for a flag.
func channelArgs(args []string) []string {
	for i := 1; i < len(args); i++ {
		s := args[i]
		switch {
		case s == "--":
			return args
		case s == "convert" || s == "c":
		case isChannel(s):
			out := make([]string, 0, len(args)+1)
			out = append(out, args[:i]...)
			out = append(out, "--")
			return append(out, args[i:]...)
		case s == "-f" || s == "--format" || s == "-format" || s == "-pl" || s == "--pl":
			i++ // skip flag value.
		case strings.HasPrefix(s, "-"):
		default:
			// another command, its arguments are not channels.
			return args
		}
	}
	return args
}

func isChannel(s string) bool {
	_, err := parseChannel(s)
	return err == nil
}

// exitCode maps action error to process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var rerr *colorconv.RangeError
	if errors.As(err, &rerr) {
		return exitRange
	}
	return exitUsage
}

func (a *application) newApp() *cli.App {

	app := cli.NewApp()
	app.Name = "colorconv"
	app.Usage = "RGB565 colour converter"
	app.UsageText = "colorconv [global options] <RED> <GREEN> <BLUE>\n   colorconv [global options] command [command options] [arguments...]"
	app.Version = BuildNumber
	app.Writer = a.stdout
	app.ErrWriter = a.stderr
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:   "debug, d",
			Usage:  "debug mode activation",
			EnvVar: EnvVarPrefix + "DEBUG",
		},
		cli.BoolFlag{
			Name:   "strict",
			Usage:  "reject channel value 256",
			EnvVar: EnvVarPrefix + "STRICT",
		},
		cli.StringFlag{
			Name:   "format, f",
			Value:  "text",
			Usage:  "output format: text or json",
			EnvVar: EnvVarPrefix + "FORMAT",
		},
		cli.StringFlag{
			Name:   "pl",
			Usage:  "pprof HTTP listener",
			EnvVar: EnvVarPrefix + "PPROF_LISTENER",
		},
	}
	app.Before = a.setup
	app.Action = a.convert

	app.Commands = []cli.Command{
		{
			Name:      "convert",
			Aliases:   []string{"c"},
			Usage:     "convert single colour",
			ArgsUsage: "<RED> <GREEN> <BLUE>",
			Action:    a.convert,
		},
		{
			Name:    "batch",
			Aliases: []string{"b"},
			Usage:   "convert colours listed in a text file into CSV",
			Action:  a.batch,
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:   "workers, w",
					Value:  runtime.NumCPU(),
					Usage:  "amount of parallel conversion goroutines",
					EnvVar: EnvVarPrefix + "WORKERS",
				},
				cli.StringFlag{
					Name:   "input, i",
					Value:  "input.txt",
					Usage:  "input file name",
					EnvVar: EnvVarPrefix + "INPUT",
				},
				cli.StringFlag{
					Name:   "output, o",
					Value:  "result.csv",
					Usage:  "output file name",
					EnvVar: EnvVarPrefix + "OUTPUT",
				},
			},
		},
		{
			Name:    "serve",
			Aliases: []string{"s"},
			Usage:   "start HTTP conversion service",
			Action:  a.serve,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:   "listen, l",
					Value:  "127.0.0.1:8565",
					Usage:  "HTTP listener address",
					EnvVar: EnvVarPrefix + "LISTEN",
				},
			},
		},
		{
			Name:    "framebuffer",
			Aliases: []string{"fb"},
			Usage:   "encode image file into raw RGB565 framebuffer",
			Action:  a.framebuffer,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:   "input, i",
					Usage:  "image file name (png, jpeg, gif, bmp, tiff)",
					EnvVar: EnvVarPrefix + "FB_INPUT",
				},
				cli.StringFlag{
					Name:   "output, o",
					Value:  "framebuffer.bin",
					Usage:  "output file name",
					EnvVar: EnvVarPrefix + "FB_OUTPUT",
				},
				cli.IntFlag{
					Name:   "width",
					Usage:  "target width, 0 keeps aspect ratio",
					EnvVar: EnvVarPrefix + "FB_WIDTH",
				},
				cli.IntFlag{
					Name:   "height",
					Usage:  "target height, 0 keeps aspect ratio",
					EnvVar: EnvVarPrefix + "FB_HEIGHT",
				},
				cli.BoolFlag{
					Name:   "little-endian, le",
					Usage:  "write pixels least significant byte first",
					EnvVar: EnvVarPrefix + "FB_LITTLE_ENDIAN",
				},
			},
		},
		{
			Name:    "calibration",
			Aliases: []string{"cal"},
			Usage:   "parse spectrometer calibration data",
			Action:  a.calibration,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:   "input, i",
					Usage:  "calibration CSV file, built-in data if empty",
					EnvVar: EnvVarPrefix + "CALIBRATION",
				},
			},
		},
	}

	return app
}

func (a *application) setup(c *cli.Context) error {

	debug := c.GlobalBool("debug")

	// 1. logger format preparation.
	zerolog.TimeFieldFormat = "20060102T150405.999Z07:00"
	zerolog.TimestampFieldName = "t"
	zerolog.MessageFieldName = "msg"
	zerolog.LevelFieldName = "lvl"

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// stdout carries conversion output, logs go to stderr.
	a.logger = zerolog.New(a.stderr).With().Timestamp().Logger()

	// 2. runtime profiling activation.
	if c.GlobalIsSet("pl") {
		go func(listen string) {
			a.logger.Info().Str("pl", listen).Msg("start pprof http listener")
			if err := http.ListenAndServe(listen, nil); err != nil {
				a.logger.Error().Str("errmsg", err.Error()).Msg("pprof listener starting failed")
			}
		}(c.GlobalString("pl"))
	}
	return nil
}

func (a *application) converter(c *cli.Context) *colorconv.Converter {
	return colorconv.NewConverter(c.GlobalBool("strict"))
}

// format returns validated --format value.
func (a *application) format(c *cli.Context) (string, error) {
	switch f := c.GlobalString("format"); f {
	case "text", "json":
		return f, nil
	default:
		fmt.Fprintf(a.stdout, "unknown format: %s\n", f)
		return "", errUsage
	}
}

func (a *application) convert(c *cli.Context) error {

	format, err := a.format(c)
	if err != nil {
		return err
	}

	args := c.Args()
	if len(args) != 3 {
		fmt.Fprintf(a.stdout, "Usage: %s <RED> <GREEN> <BLUE>\n", c.App.Name)
		return errUsage
	}

	var v [3]int
	for i, s := range args {
		n, err := parseChannel(s)
		if err != nil {
			fmt.Fprintf(a.stdout, "invalid channel value: %s\n", s)
			return errUsage
		}
		v[i] = n
	}

	res, err := a.converter(c).Convert(v[0], v[1], v[2])
	if err != nil {
		var rerr *colorconv.RangeError
		if errors.As(err, &rerr) {
			fmt.Fprintf(a.stdout, "value out of range: %d\n", rerr.Value)
		}
		a.logger.Debug().Str("errmsg", err.Error()).Msg("conversion failed")
		return err
	}

	if format == "json" {
		return colorconv.WriteJSON(a.stdout, res)
	}
	return colorconv.WriteText(a.stdout, res)
}

func parseChannel(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

// interruptContext returns context cancelled on SIGINT or SIGTERM.
func (a *application) interruptContext() (context.Context, context.CancelFunc) {

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		select {
		case sig := <-stop:
			a.logger.Info().Str("signal", sig.String()).Msg("signal captured")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(stop)
	}()
	return ctx, cancel
}

func (a *application) batch(c *cli.Context) error {

	logger := a.logger
	logger.Info().
		Bool("strict", c.GlobalBool("strict")).
		Str("input", c.String("input")).
		Str("output", c.String("output")).
		Int("workers", c.Int("workers")).
		Msg("launching params")

	ctx, cancel := a.interruptContext()
	defer cancel()

	output := colorconv.NewBufferedCSV(colorconv.DefaultBufferSize)
	if err := output.Open(c.String("output")); err != nil {
		logger.Error().Str("errmsg", err.Error()).Msg("output file open/create failed")
		return err
	}

	input := colorconv.NewPlainTextFileInput(logger)
	if err := input.Start(ctx, c.String("input")); err != nil {
		logger.Error().Str("errmsg", err.Error()).Msg("input file open failed")
		_ = output.Close()
		return err
	}

	started := time.Now()
	proc := colorconv.NewColorProcessor(logger, input, output, a.converter(c))
	st := proc.Start(ctx, c.Int("workers"))

	if err := output.Close(); err != nil {
		logger.Error().Str("errmsg", err.Error()).Msg("output file flush/close failed")
		return err
	}

	logger.Info().Int64("processed", st.Processed).Int64("failed", st.Failed).
		Str("dur", time.Since(started).String()).Msg("completed")
	return nil
}

func (a *application) serve(c *cli.Context) error {

	cal, err := colorconv.DefaultCalibration()
	if err != nil {
		a.logger.Error().Str("errmsg", err.Error()).Msg("calibration parsing failed")
		return err
	}

	ctx, cancel := a.interruptContext()
	defer cancel()

	a.logger.Info().Str("version", BuildNumber).Msg("application started")
	srv := colorconv.NewServer(a.logger, a.converter(c), cal)
	if err := srv.ListenAndServe(ctx, c.String("listen")); err != nil {
		a.logger.Error().Str("errmsg", err.Error()).Msg("http listener failed")
		return err
	}
	return nil
}

func (a *application) framebuffer(c *cli.Context) error {

	if c.String("input") == "" {
		fmt.Fprintln(a.stdout, "framebuffer: --input is required")
		return errUsage
	}

	var order binary.ByteOrder = binary.BigEndian
	if c.Bool("little-endian") {
		order = binary.LittleEndian
	}

	size, err := colorconv.EncodeImageFile(c.String("input"), c.String("output"), c.Int("width"), c.Int("height"), order)
	if err != nil {
		a.logger.Error().Str("input", c.String("input")).Str("errmsg", err.Error()).Msg("framebuffer encoding failed")
		return err
	}

	a.logger.Info().Str("output", c.String("output")).
		Int("width", size.X).Int("height", size.Y).
		Str("order", order.String()).Msg("framebuffer written")
	return nil
}

func (a *application) calibration(c *cli.Context) error {

	format, err := a.format(c)
	if err != nil {
		return err
	}

	var cal *colorconv.Calibration
	if fname := c.String("input"); fname != "" {
		f, oerr := os.Open(fname)
		if oerr != nil {
			a.logger.Error().Str("errmsg", oerr.Error()).Msg("calibration file open failed")
			return oerr
		}
		cal, err = colorconv.ParseCalibration(f)
		_ = f.Close()
	} else {
		cal, err = colorconv.DefaultCalibration()
	}
	if err != nil {
		a.logger.Error().Str("errmsg", err.Error()).Msg("calibration parsing failed")
		return err
	}

	return colorconv.WriteCalibration(a.stdout, cal, format)
}
