/*
 * midimonster-go - Main process.
 *
 * Copyright 2026, midimonster-go contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	"github.com/go-midimonster/midimonster/config/backendconfig"
	"github.com/go-midimonster/midimonster/console"
	"github.com/go-midimonster/midimonster/instance"
	logger "github.com/go-midimonster/midimonster/util/logger"
)

var Logger *slog.Logger

func main() {
	optConfig := getopt.StringLong("config", 'c', "midimonster.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optQueue := getopt.IntLong("queue", 'q', 64, "Event queue initial capacity")
	optNoConsole := getopt.BoolLong("no-console", 0, "Disable the interactive operator console")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		file, _ = os.Create(*optLogFile)
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelInfo)
	debugFlag := false
	Logger = slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel, AddSource: false}, &debugFlag))
	slog.SetDefault(Logger)

	Logger.Info("midimonster-go started")

	if optConfig == nil || *optConfig == "" {
		Logger.Error("please specify a configuration file")
		os.Exit(1)
	}
	if _, err := os.Stat(*optConfig); os.IsNotExist(err) {
		Logger.Error("configuration file not found", "path", *optConfig)
		os.Exit(1)
	}

	backend, err := instance.NewBackend(*optQueue)
	if err != nil {
		Logger.Error("failed to construct backend", "error", err)
		os.Exit(1)
	}

	logFile, err := backendconfig.Load(*optConfig, backend)
	if err != nil {
		Logger.Error("failed to load configuration", "error", err)
		backend.Shutdown()
		os.Exit(1)
	}
	if logFile != "" && *optLogFile == "" {
		if f, ferr := os.Create(logFile); ferr == nil {
			Logger = slog.New(logger.NewHandler(f, &slog.HandlerOptions{Level: programLevel, AddSource: false}, &debugFlag))
			slog.SetDefault(Logger)
		} else {
			Logger.Warn("could not open LOGFILE path, keeping current log output", "path", logFile, "error", ferr)
		}
	}
	if backend.Detect {
		debugFlag = true
		programLevel.Set(slog.LevelDebug)
		if h, ok := Logger.Handler().(*logger.LogHandler); ok {
			h.SetDebug(&debugFlag)
		}
	}

	Logger.Info("backend configured", "instances", len(backend.Instances()))

	stop := make(chan struct{})
	go backend.Run(stop)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if *optNoConsole {
		<-sigChan
		Logger.Info("got quit signal")
	} else {
		consoleDone := make(chan struct{})
		go func() {
			defer close(consoleDone)
			console.Run(backend, stop)
		}()
		select {
		case <-sigChan:
			Logger.Info("got quit signal")
		case <-consoleDone:
			Logger.Info("console requested shutdown")
		}
	}

	close(stop)
	Logger.Info("shutting down backend")
	if err := backend.Shutdown(); err != nil {
		Logger.Error("error during shutdown", "error", err)
	}
	Logger.Info("midimonster-go stopped")
}
