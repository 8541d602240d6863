// Package server implements the TCP request protocol. A client opens a
// connection and sends a single message of at most 2048 bytes: the
// ticker symbol followed by a one-byte command tag. The server answers
// with one response and closes the connection.
//
// Tags:
//
//	'v'  validate the ticker        -> "success" or "error"
//	'g'  train and chart            -> PNG bytes
//	'p'  predict the next close     -> "$<rounded price>"
package server

import (
	"context"
	"errors"
	"log"
	"net"
	"strings"
	"sync"

	"stock-sage/internal/domain"
	"stock-sage/internal/ml/forecast"

	"go.opentelemetry.io/otel/trace"
)

const maxRequestBytes = 2048

const (
	tagValidate = 'v'
	tagGraph    = 'g'
	tagPredict  = 'p'
)

const unrecognizedResponse = "error: unrecognized command"

// Pipeline is the application surface the wire protocol drives.
type Pipeline interface {
	Validate(ctx context.Context, symbol string) error
	Chart(ctx context.Context, symbol string) ([]byte, error)
	Predict(ctx context.Context, symbol string) (*domain.Forecast, error)
}

// SessionServer accepts one connection at a time and serves one request
// per connection.
type SessionServer struct {
	tracer   trace.Tracer
	addr     string
	pipeline Pipeline

	mu       sync.Mutex
	listener net.Listener
}

func NewSessionServer(tracer trace.Tracer, addr string, pipeline Pipeline) *SessionServer {
	return &SessionServer{tracer: tracer, addr: addr, pipeline: pipeline}
}

// Addr returns the bound listen address, once Start has taken effect.
func (s *SessionServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start listens and serves until ctx is cancelled. Connections are
// handled sequentially; training already serializes behind a worker, so
// parallel accepts would only add interleaving for no throughput.
func (s *SessionServer) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	log.Printf("Session server listening on %s", listener.Addr())
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		s.handleConn(ctx, conn)
	}
}

func (s *SessionServer) handleConn(ctx context.Context, conn net.Conn) {
	ctx, span := s.tracer.Start(ctx, "session.handle-conn")
	defer span.End()
	defer conn.Close()

	buf := make([]byte, maxRequestBytes)
	n, err := conn.Read(buf)
	if err != nil && n == 0 {
		log.Printf("session read error: %v", err)
		return
	}

	response := s.dispatch(ctx, buf[:n])
	if _, err := conn.Write(response); err != nil {
		log.Printf("session write error: %v", err)
	}
}

// dispatch parses one request. The command tag is the final byte; the
// bytes before it are the ticker symbol.
func (s *SessionServer) dispatch(ctx context.Context, request []byte) []byte {
	if len(request) < 2 {
		return []byte(unrecognizedResponse)
	}
	tag := request[len(request)-1]
	symbol := strings.ToUpper(strings.TrimSpace(string(request[:len(request)-1])))
	if symbol == "" {
		return []byte(unrecognizedResponse)
	}

	switch tag {
	case tagValidate:
		if err := s.pipeline.Validate(ctx, symbol); err != nil {
			if !errors.Is(err, domain.ErrDataUnavailable) {
				log.Printf("validate %s: %v", symbol, err)
			}
			return []byte("error")
		}
		return []byte("success")

	case tagGraph:
		chart, err := s.pipeline.Chart(ctx, symbol)
		if err != nil {
			log.Printf("chart %s: %v", symbol, err)
			return []byte("error")
		}
		return chart

	case tagPredict:
		f, err := s.pipeline.Predict(ctx, symbol)
		if err != nil {
			log.Printf("predict %s: %v", symbol, err)
			return []byte("error")
		}
		return []byte(forecast.FormatPrice(f.Price))

	default:
		return []byte(unrecognizedResponse)
	}
}
