package identity

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// StaticCode is the fixed code accepted by StaticCodes.
const StaticCode = "000000"

const (
	codePrefix   = "otp:v1:"
	codeDigits   = 6
	fieldHash    = "hash"
	fieldTries   = "attempts"
	cooldownPart = ":cooldown"
)

var (
	// ErrCodeMismatch is returned for a wrong code; the caller may retry.
	ErrCodeMismatch = errors.New("invalid verification code")
	// ErrCodeExpired is returned when no live code exists for the identifier.
	ErrCodeExpired = errors.New("verification code expired")
	// ErrTooManyAttempts is returned once the attempt budget is spent; the code is discarded.
	ErrTooManyAttempts = errors.New("too many verification attempts")
	// ErrResendTooSoon is returned when a new code is requested inside the cooldown.
	ErrResendTooSoon = errors.New("verification code requested too recently")
)

// CodeIssuer hands out and checks one-time codes per identifier.
type CodeIssuer interface {
	Issue(ctx context.Context, identifier string) (string, error)
	Check(ctx context.Context, identifier, code string) error
}

// StaticCodes accepts StaticCode for every identifier. Development only.
type StaticCodes struct{}

// Issue always returns StaticCode.
func (StaticCodes) Issue(context.Context, string) (string, error) {
	return StaticCode, nil
}

// Check compares code with StaticCode.
func (StaticCodes) Check(_ context.Context, _ string, code string) error {
	if code != StaticCode {
		return ErrCodeMismatch
	}
	return nil
}

// RedisCodesOptions tunes RedisCodes.
type RedisCodesOptions struct {
	TTL         time.Duration
	MaxAttempts int
	Cooldown    time.Duration
	// HashCost is the bcrypt cost; zero means bcrypt.DefaultCost.
	HashCost int
}

// RedisCodes issues random codes that expire, allow a bounded number of
// attempts and are discarded on first successful use. Only bcrypt hashes are stored.
type RedisCodes struct {
	client *redis.Client
	opts   RedisCodesOptions
}

// NewRedisCodes builds a Redis-backed CodeIssuer.
func NewRedisCodes(client *redis.Client, opts RedisCodesOptions) *RedisCodes {
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	return &RedisCodes{client: client, opts: opts}
}

// Issue creates a new code for identifier, replacing any earlier one.
func (r *RedisCodes) Issue(ctx context.Context, identifier string) (string, error) {
	key := codePrefix + identifier
	if r.opts.Cooldown > 0 {
		ok, err := r.client.SetNX(ctx, key+cooldownPart, 1, r.opts.Cooldown).Result()
		if err != nil {
			return "", fmt.Errorf("reserve code cooldown: %w", err)
		}
		if !ok {
			return "", ErrResendTooSoon
		}
	}

	code, err := randomCode(codeDigits)
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), r.opts.HashCost)
	if err != nil {
		return "", fmt.Errorf("hash code: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fieldHash, hash, fieldTries, 0)
	pipe.Expire(ctx, key, r.opts.TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("store code: %w", err)
	}
	return code, nil
}

// countAttempt bumps the attempt counter of a live code and returns its hash.
// A missing key stays missing, so an expiring code never loses its TTL.
var countAttempt = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return false
end
local tries = redis.call("HINCRBY", KEYS[1], ARGV[1], 1)
return {redis.call("HGET", KEYS[1], ARGV[2]), tries}
`)

// Check consumes one attempt against the live code for identifier.
func (r *RedisCodes) Check(ctx context.Context, identifier, code string) error {
	key := codePrefix + identifier
	hash, attempts, err := r.attempt(ctx, key)
	if err != nil {
		return err
	}
	if attempts > int64(r.opts.MaxAttempts) {
		r.client.Del(ctx, key)
		return ErrTooManyAttempts
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)); err != nil {
		if attempts == int64(r.opts.MaxAttempts) {
			r.client.Del(ctx, key)
			return ErrTooManyAttempts
		}
		return ErrCodeMismatch
	}

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("consume code: %w", err)
	}
	return nil
}

func (r *RedisCodes) attempt(ctx context.Context, key string) (string, int64, error) {
	res, err := countAttempt.Run(ctx, r.client, []string{key}, fieldTries, fieldHash).Slice()
	if errors.Is(err, redis.Nil) {
		return "", 0, ErrCodeExpired
	}
	if err != nil {
		return "", 0, fmt.Errorf("count attempt: %w", err)
	}
	if len(res) != 2 {
		return "", 0, ErrCodeExpired
	}
	hash, _ := res[0].(string)
	attempts, _ := res[1].(int64)
	if hash == "" {
		return "", 0, ErrCodeExpired
	}
	return hash, attempts, nil
}

func randomCode(digits int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
