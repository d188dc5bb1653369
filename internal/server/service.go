package server

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/xtding233/bitgen/internal/algo"
	"github.com/xtding233/bitgen/internal/bitgen"
	"github.com/xtding233/bitgen/internal/config"
)

// Stream limits for StreamRaw.
const (
	DefaultChunkWords = 1024
	MaxChunkWords     = 1 << 16
	MaxStreamWords    = 1 << 30
)

// session owns one generator. Every draw holds mu, so a session is used by
// one goroutine at a time however many RPCs reach it concurrently.
type session struct {
	mu        sync.Mutex
	core      bitgen.Core
	algorithm string
	created   time.Time
}

// Service implements GeneratorServer over a table of sessions.
type Service struct {
	loader      *config.Loader
	log         zerolog.Logger
	maxSessions int

	mu       sync.RWMutex
	sessions map[string]*session
}

// Options configure a Service.
type Options struct {
	// Loader resolves named profiles in Open. Nil disables profiles.
	Loader      *config.Loader
	// Logger defaults to a disabled logger.
	Logger      *zerolog.Logger
	MaxSessions int
}

var _ GeneratorServer = (*Service)(nil)

func NewService(opts Options) *Service {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 1024
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	return &Service{
		loader:      opts.Loader,
		log:         log,
		maxSessions: opts.MaxSessions,
		sessions:    make(map[string]*session),
	}
}

// Len returns the number of open sessions.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Service) Open(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	algorithm, err := stringField(req, "algorithm")
	if err != nil {
		return nil, err
	}
	seed, err := stringField(req, "seed")
	if err != nil {
		return nil, err
	}
	profile, err := stringField(req, "profile")
	if err != nil {
		return nil, err
	}
	spawnKey, err := spawnKeyField(req, "spawn_key")
	if err != nil {
		return nil, err
	}

	var p config.Profile
	if profile != "" {
		if s.loader == nil {
			return nil, status.Error(codes.FailedPrecondition, "profiles are not configured")
		}
		p, err = s.loader.Load(profile)
		switch {
		case errors.Is(err, config.ErrProfileName):
			return nil, status.Error(codes.InvalidArgument, err.Error())
		case errors.Is(err, os.ErrNotExist):
			return nil, status.Error(codes.FailedPrecondition, err.Error())
		case err != nil:
			return nil, status.Errorf(codes.Internal, "load profile: %v", err)
		}
	}
	o := config.Overrides{}
	if algorithm != "" {
		o.Algorithm = &algorithm
	}
	if seed != "" {
		o.Seed = &seed
	}
	resolved, err := o.Apply(p).Resolve(spawnKey...)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	gen, err := algo.New(resolved.Algorithm, resolved.Seed)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	id := uuid.NewString()
	sess := &session{core: bitgen.Bind(gen), algorithm: resolved.Algorithm, created: time.Now()}

	s.mu.Lock()
	if len(s.sessions) >= s.maxSessions {
		s.mu.Unlock()
		return nil, status.Errorf(codes.ResourceExhausted, "session limit %d reached", s.maxSessions)
	}
	s.sessions[id] = sess
	s.mu.Unlock()

	s.log.Info().
		Str("session", id).
		Str("algorithm", resolved.Algorithm).
		Str("profile", profile).
		Str("entropy", resolved.Seed.EntropyString()).
		Uints32("spawn_key", spawnKey).
		Msg("session opened")
	return wrapperspb.String(id), nil
}

func (s *Service) lookup(id string) (*session, error) {
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "session id is required")
	}
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, status.Errorf(codes.NotFound, "session %q not found", id)
	}
	return sess, nil
}

// with runs fn on the session generator while holding its lock.
func (s *Service) with(id string, fn func(bitgen.Core)) error {
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	fn(sess.core)
	return nil
}

func (s *Service) NextUint64(_ context.Context, req *wrapperspb.StringValue) (*wrapperspb.UInt64Value, error) {
	var v uint64
	if err := s.with(req.GetValue(), func(c bitgen.Core) { v = c.NextUint64() }); err != nil {
		return nil, err
	}
	return wrapperspb.UInt64(v), nil
}

func (s *Service) NextUint32(_ context.Context, req *wrapperspb.StringValue) (*wrapperspb.UInt32Value, error) {
	var v uint32
	if err := s.with(req.GetValue(), func(c bitgen.Core) { v = c.NextUint32() }); err != nil {
		return nil, err
	}
	return wrapperspb.UInt32(v), nil
}

func (s *Service) NextDouble(_ context.Context, req *wrapperspb.StringValue) (*wrapperspb.DoubleValue, error) {
	var v float64
	if err := s.with(req.GetValue(), func(c bitgen.Core) { v = c.NextDouble() }); err != nil {
		return nil, err
	}
	return wrapperspb.Double(v), nil
}

func (s *Service) NextRaw(_ context.Context, req *wrapperspb.StringValue) (*wrapperspb.UInt64Value, error) {
	var v uint64
	if err := s.with(req.GetValue(), func(c bitgen.Core) { v = c.NextRaw() }); err != nil {
		return nil, err
	}
	return wrapperspb.UInt64(v), nil
}

func (s *Service) Close(_ context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	id := req.GetValue()
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "session id is required")
	}
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return nil, status.Errorf(codes.NotFound, "session %q not found", id)
	}
	s.log.Info().Str("session", id).Str("algorithm", sess.algorithm).Dur("age", time.Since(sess.created)).Msg("session closed")
	return &emptypb.Empty{}, nil
}

// StreamRaw sends words NextRaw outputs of a session as little-endian bytes,
// chunk words per message. The session lock is taken per chunk so unary
// draws on the same session interleave between chunks.
func (s *Service) StreamRaw(req *structpb.Struct, stream grpc.ServerStreamingServer[wrapperspb.BytesValue]) error {
	id, err := stringField(req, "session")
	if err != nil {
		return err
	}
	words, err := intField(req, "words", 0, MaxStreamWords)
	if err != nil {
		return err
	}
	if words == 0 {
		return status.Error(codes.InvalidArgument, "words must be positive")
	}
	chunk, err := intField(req, "chunk", DefaultChunkWords, MaxChunkWords)
	if err != nil {
		return err
	}
	if chunk == 0 {
		chunk = DefaultChunkWords
	}
	if _, err := s.lookup(id); err != nil {
		return err
	}

	ctx := stream.Context()
	for sent := 0; sent < words; {
		if err := ctx.Err(); err != nil {
			return status.FromContextError(err).Err()
		}
		n := min(chunk, words-sent)
		// grpc may still hold a sent message; never reuse it
		out := make([]byte, 8*n)
		if err := s.with(id, func(c bitgen.Core) {
			for i := 0; i < n; i++ {
				binary.LittleEndian.PutUint64(out[8*i:], c.NextRaw())
			}
		}); err != nil {
			// closed mid-stream
			return err
		}
		if err := stream.Send(wrapperspb.Bytes(out)); err != nil {
			return err
		}
		sent += n
	}
	return nil
}
