// Copyright 2024 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server contains the command that serves shape queries over HTTP.
package server

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/ldsparql/shape"
	"github.com/google/ldsparql/sparql/planner"
	"github.com/google/ldsparql/storage"
	"github.com/google/ldsparql/tools/vcli/ld/command"
	"github.com/google/ldsparql/tools/vcli/ld/common"
	"github.com/google/ldsparql/triple/term"

	ldio "github.com/google/ldsparql/io"
)

// New creates the server command.
func New(chanSize int) *command.Command {
	cmd := &command.Command{
		UsageLine: "server <shapes.yaml> <port> [flags]",
		Short:     "runs a CONSTRUCT endpoint.",
		Long: `Runs an HTTP endpoint serving the graphs of the shapes in the table.
GET /construct?type=T&subject=IRI returns the constructed N-Triples. GET
/query?type=T&subject=IRI returns the SPARQL query instead. POST /load adds
the N-Triples in the request body to the served graph. Requests accept an
optional timeout parameter such as 500ms.`,
	}
	var sf common.StoreFlags
	cmd.Flag = common.NewFlagSet(cmd.Name())
	sf.AddFlags(cmd.Flag, true)
	cmd.Run = func(ctx context.Context, args []string) int {
		return runServer(ctx, cmd, args, chanSize)
	}
	return cmd
}

func runServer(ctx context.Context, cmd *command.Command, args []string, chanSize int) int {
	var sf common.StoreFlags
	fs := common.NewFlagSet(cmd.Name())
	sf.AddFlags(fs, true)
	if err := fs.Parse(args); err != nil {
		log.Printf("[%v] %v", time.Now(), err)
		return cmd.Usage()
	}
	pos := fs.Args()
	if len(pos) < 4 {
		log.Printf("[%v] Missing required shapes file and/or port number. ", time.Now())
		return cmd.Usage()
	}
	p := strings.TrimSpace(pos[3])
	port, err := strconv.Atoi(p)
	if err != nil {
		log.Printf("[%v] Invalid port number %q; %v\n", time.Now(), p, err)
		return 2
	}
	tbl, err := shape.LoadFile(pos[2])
	if err != nil {
		log.Printf("[%v] %v", time.Now(), err)
		return 2
	}
	st, release, err := sf.Open()
	if err != nil {
		log.Printf("[%v] %v", time.Now(), err)
		return 2
	}
	defer release()
	g, err := common.GraphOrNew(ctx, st, sf.Graph)
	if err != nil {
		log.Printf("[%v] %v", time.Now(), err)
		return 2
	}

	log.Printf("[%v] Starting server at port %d\n", time.Now(), port)
	if err := http.ListenAndServe(":"+p, NewHandler(tbl, g, chanSize)); err != nil {
		log.Printf("[%v] Failed to start server on port %s; %v", time.Now(), p, err)
		return 2
	}
	return 0
}

type serverConfig struct {
	table    *shape.Table
	graph    storage.Graph
	chanSize int
}

// NewHandler returns the handler serving the shapes of the table over the
// provided graph.
func NewHandler(tbl *shape.Table, g storage.Graph, chanSize int) http.Handler {
	s := &serverConfig{table: tbl, graph: g, chanSize: chanSize}
	mux := http.NewServeMux()
	mux.HandleFunc("/construct", s.constructHandler)
	mux.HandleFunc("/query", s.queryHandler)
	mux.HandleFunc("/load", s.loadHandler)
	mux.HandleFunc("/", s.defaultHandler)
	return mux
}

// requestContext returns a context honoring the optional timeout parameter.
func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if timeout, err := time.ParseDuration(r.FormValue("timeout")); err == nil {
		return context.WithTimeout(r.Context(), timeout)
	}
	return context.WithCancel(r.Context())
}

// compile returns the query for the type and subject of the request.
func (s *serverConfig) compile(r *http.Request) (*planner.Plan, string, error) {
	name, subject := r.FormValue("type"), r.FormValue("subject")
	if name == "" || subject == "" {
		return nil, "", fmt.Errorf("both type and subject parameters are required")
	}
	iri := term.NewNamedNode(subject)
	opts := shape.Options{Subject: &iri}
	if b, _ := strconv.ParseBool(r.FormValue("filter_ids")); b {
		opts.Identifiers = shape.FilterIdentifiers
	}
	cq, root, err := s.table.Compile(name, opts)
	if err != nil {
		return nil, "", err
	}
	q := cq.Query()
	pln := planner.New([]storage.Graph{s.graph}, q).WithChannelSize(s.chanSize)
	if opts.Identifiers != shape.FilterIdentifiers {
		pln.Bind(root, iri)
	}
	return pln, q.String(), nil
}

func (s *serverConfig) constructHandler(w http.ResponseWriter, r *http.Request) {
	pln, _, err := s.compile(r)
	if err != nil {
		reportError(w, http.StatusBadRequest, err)
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()
	ts, err := pln.Execute(ctx)
	if err != nil {
		reportError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/n-triples")
	if _, err := ldio.WriteTriples(w, ts); err != nil {
		log.Printf("[%s] %v\n", time.Now(), err)
	}
}

func (s *serverConfig) queryHandler(w http.ResponseWriter, r *http.Request) {
	_, q, err := s.compile(r)
	if err != nil {
		reportError(w, http.StatusBadRequest, err)
		return
	}
	w.Header().Set("Content-Type", "application/sparql-query")
	io.WriteString(w, q)
}

func (s *serverConfig) loadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		reportError(w, http.StatusMethodNotAllowed, fmt.Errorf("invalid %s request on %q endpoint. Only POST request are accepted", r.Method, r.URL.Path))
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()
	cnt, err := ldio.ReadIntoGraph(ctx, s.graph, r.Body)
	if err != nil {
		reportError(w, http.StatusBadRequest, err)
		return
	}
	fmt.Fprintf(w, "[OK] %d triples loaded\n", cnt)
}

func (s *serverConfig) defaultHandler(w http.ResponseWriter, r *http.Request) {
	if err := defaultEntryTemplate.Execute(w, s.table.TypeNames()); err != nil {
		reportError(w, http.StatusInternalServerError, err)
	}
}

func reportError(w http.ResponseWriter, code int, err error) {
	w.WriteHeader(code)
	log.Printf("[%s] %v\n", time.Now(), err)
	errorTemplate.Execute(w, err)
}

var (
	defaultEntryTemplate = template.Must(template.New("default").Parse(`
	<html>
	<head>
		<title>ld - CONSTRUCT endpoint</title>
	</head>
	<body>
		<form action="/construct" method="GET">
			<select name="type">{{range .}}<option>{{.}}</option>{{end}}</select>
			<input type="text" name="subject" size="60">
			<input type="submit" value="Construct">
		</form>
	</body>
	</html>`))

	errorTemplate = template.Must(template.New("error").Parse(`
	<html>
	<head>
		<title>ld - Endpoint error</title>
	</head>
	<body>
		<b>{{.}}</b>
	</body>
	</html>`))
)
