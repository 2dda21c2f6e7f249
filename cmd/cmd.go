package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/akamensky/argparse"
	"github.com/fatih/color"

	"github.com/securycore/snowdrift/check"
	"github.com/securycore/snowdrift/config"
	"github.com/securycore/snowdrift/printer"
	"github.com/securycore/snowdrift/probe"
	"github.com/securycore/snowdrift/remote"
	"github.com/securycore/snowdrift/util"
)

func Execute() {
	if util.EnvNoColor {
		color.NoColor = true
	}
	parser := argparse.NewParser("snowdrift", "Validate fleet network reachability from declarative rules files")
	filter := parser.String("", "filter", &argparse.Options{Help: "Only process rule lines containing this substring"})
	traceroute := parser.Flag("", "traceroute", &argparse.Options{Help: "Run traceroute from the source host when a probe times out"})
	tracerouteForce := parser.Flag("", "traceroute-force", &argparse.Options{Help: "Run traceroute from the source host after every probe"})
	tcpTraceroute := parser.Flag("", "tcp-traceroute", &argparse.Options{Help: "Run tcptraceroute to the destination port when a TCP probe times out"})
	tcpTracerouteForce := parser.Flag("", "tcp-traceroute-force", &argparse.Options{Help: "Run tcptraceroute to the destination port after every TCP probe"})
	sshUser := parser.String("u", "ssh-user", &argparse.Options{Help: "SSH user for remote execution (default: config file, then current user)"})
	timeout := parser.Int("w", "timeout", &argparse.Options{Help: "SSH connect timeout in seconds"})
	ver := parser.Flag("v", "version", &argparse.Options{Help: "Print version info and exit"})
	moreFiles := parser.StringList("f", "file", &argparse.Options{Help: "Additional rules file (repeatable)"})
	rulesFile := parser.StringPositional(&argparse.Options{Help: "Rules file"})

	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	if *ver {
		printer.Version()
		os.Exit(0)
	}

	var files []string
	if *rulesFile != "" {
		files = append(files, *rulesFile)
	}
	files = append(files, *moreFiles...)
	if len(files) == 0 {
		fmt.Print(parser.Usage(fmt.Errorf("at least one rules file is required")))
		os.Exit(1)
	}

	config.InitConfig()
	settings := config.Load()
	if *sshUser != "" {
		settings.SSHUser = *sshUser
	}
	if *timeout > 0 {
		settings.ConnectTimeout = time.Duration(*timeout) * time.Second
	}

	runner := remote.NewSSHRunner(settings.SSHUser, settings.SSHPort, settings.SSHKeyFile, settings.ConnectTimeout)

	sess := check.NewSession(check.Config{
		Files:  files,
		Filter: *filter,
		Flags: probe.Flags{
			Traceroute:         *traceroute,
			TracerouteForce:    *tracerouteForce,
			TCPTraceroute:      *tcpTraceroute,
			TCPTracerouteForce: *tcpTracerouteForce,
		},
	}, runner)

	sess.Prober.Timeout = settings.ProbeTimeout
	sess.Prober.DefaultRecord = settings.DNSRecord
	sess.Prober.NcPath = settings.NcPath
	sess.Prober.DigPath = settings.DigPath
	sess.Escalator.Timeout = settings.EscalateTimeout
	sess.Escalator.TraceroutePath = settings.TraceroutePath
	sess.Escalator.TCPTraceroutePath = settings.TCPTraceroutePath

	printer.Version()

	if err := sess.Run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
