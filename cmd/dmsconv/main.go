// Command dmsconv converts coordinates from the command line using the same
// domain code as the ETL service.
//
// Each argument (or, without arguments, each line of stdin) is one input:
//
//	dmsconv -mode parse -- -122:25:9.9 37:46:29.7
//	dmsconv -mode format 360001
//	dmsconv -mode normalize 360000 -1800000
//	echo '[360000,-1800000,12.5]' | dmsconv -mode decode
//
// Results are written one per line. Failed inputs are reported on stderr
// and make the command exit with status 1.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/geo-position-etl/internal/domain"
)

const (
	modeParse     = "parse"
	modeFormat    = "format"
	modeNormalize = "normalize"
	modeDecode    = "decode"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dmsconv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	mode := fs.String("mode", modeParse, "conversion: parse, format, normalize or decode")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	convert, ok := converters[*mode]
	if !ok {
		fmt.Fprintf(stderr, "dmsconv: unknown mode %q\n", *mode)
		return 2
	}

	inputs, err := collectInputs(fs.Args(), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "dmsconv: read stdin: %v\n", err)
		return 1
	}

	status := 0
	for _, in := range inputs {
		out, err := convert(in)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %s\n", in, describe(err))
			status = 1
			continue
		}
		fmt.Fprintln(stdout, out)
	}
	return status
}

var converters = map[string]func(string) (string, error){
	modeParse: func(in string) (string, error) {
		v, err := domain.ParseDMS(in)
		if err != nil {
			return "", err
		}
		return formatFloat(v), nil
	},
	modeFormat: func(in string) (string, error) {
		v, err := strconv.ParseFloat(in, 64)
		if err != nil {
			return "", err
		}
		return domain.FormatDMS(v)
	},
	modeNormalize: func(in string) (string, error) {
		v, err := strconv.ParseFloat(in, 64)
		if err != nil {
			return "", err
		}
		n, err := domain.Normalize(v)
		if err != nil {
			return "", err
		}
		return formatFloat(n), nil
	},
	modeDecode: func(in string) (string, error) {
		var pos domain.Position
		if err := json.Unmarshal([]byte(in), &pos); err != nil {
			return "", err
		}
		out, err := json.Marshal(pos)
		if err != nil {
			return "", err
		}
		return string(out), nil
	},
}

// collectInputs returns the positional arguments, or the non-blank lines of
// stdin when there are none.
func collectInputs(args []string, stdin io.Reader) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	var inputs []string
	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			inputs = append(inputs, line)
		}
	}
	return inputs, scanner.Err()
}

// describe prefixes coordinate errors with their kind.
func describe(err error) string {
	var ce *domain.CoordinateError
	if errors.As(err, &ce) {
		return fmt.Sprintf("[%s] %v", ce.Kind, err)
	}
	return err.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
