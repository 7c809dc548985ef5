package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/jessevdk/go-flags"
	"github.com/xmlvet/xmlvet"
	"github.com/xmlvet/xmlvet/encoding"
)

type cmdopts struct {
	Encoding string `long:"encoding" description:"force a specific input encoding instead of the detection chain"`
	Version  bool   `long:"version" description:"display the version of xmlvet"`
}

func main() {
	os.Exit(_main())
}

func showVersion() {
	fmt.Printf("xmlvet %s\n", xmlvet.Version)
}

func showUsage() {
	fmt.Printf(`Usage: xmlvet [options] <xml_file>
	Check that the XML file is well-formed and report every defect
	with its line and column
	--encoding=NAME : force a specific input encoding
	--version : display the version of xmlvet
`)
}

func _main() int {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n✗ Validation interrupted by user")
		os.Exit(130)
	}()

	opts := cmdopts{}
	args, err := flags.ParseArgs(&opts, os.Args[1:])
	if err != nil {
		showUsage()
		return 2
	}

	if opts.Version {
		showVersion()
		return 0
	}

	if len(args) != 1 {
		showUsage()
		return 2
	}
	path := args[0]

	fi, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %s\n", err)
		return 2
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %s\n", err)
		return 2
	}

	var text, encName string
	if opts.Encoding != "" {
		text, err = encoding.DecodeWith(buf, opts.Encoding)
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s\n", err)
			return 2
		}
		encName = opts.Encoding
	} else {
		text, encName = encoding.Decode(buf)
	}

	res := xmlvet.Validate(xmlvet.SourceText{Text: text, Encoding: encName})

	rp := xmlvet.Reporter{}
	if err := rp.Report(os.Stdout, res, xmlvet.FileInfo{
		Path:    path,
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "✗ %s\n", err)
		return 2
	}

	if res.IsValid() {
		return 0
	}
	return 1
}
