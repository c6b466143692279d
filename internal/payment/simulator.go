package payment

import (
	"math/rand"
	"strconv"
	"time"
)

type Method string

const (
	MethodUPI        Method = "UPI"
	MethodCard       Method = "Card"
	MethodNetBanking Method = "Net Banking"
	MethodWallet     Method = "Digital Wallet"
	MethodCOD        Method = "Cash on Delivery"
)

type profile struct {
	delay       time.Duration
	successRate float64
	refPrefix   string
	failReason  string
}

var profiles = map[Method]profile{
	MethodUPI:        {3 * time.Second, 0.90, "UPI", "UPI payment failed. Please try again."},
	MethodCard:       {3 * time.Second, 0.90, "CARD", "Card payment was declined by the issuer."},
	MethodNetBanking: {4 * time.Second, 0.85, "NB", "Net banking payment failed. Please try again."},
	MethodWallet:     {2 * time.Second, 0.95, "WLT", "Wallet payment failed. Please try again."},
	MethodCOD:        {1 * time.Second, 1.0, "COD", ""},
}

func ParseMethod(s string) (Method, bool) {
	m := Method(s)
	_, ok := profiles[m]
	return m, ok
}

type Outcome struct {
	OK        bool
	Reference string
	Charged   int64
	Reason    string
}

// Simulator stands in for an external payment gateway. Outcome randomness
// and the simulated network delay are both injectable so tests run
// deterministic and instant.
type Simulator struct {
	CODSurcharge int64
	Rand         func() float64
	Sleep        func(time.Duration)
}

func NewSimulator(codSurcharge int64) *Simulator {
	return &Simulator{
		CODSurcharge: codSurcharge,
		Rand:         rand.Float64,
		Sleep:        time.Sleep,
	}
}

// Resolve blocks for the method's simulated delay and reports the outcome
// of a single attempt. Cash on delivery always succeeds and charges the
// amount plus the handling surcharge; every other method succeeds with its
// fixed probability, independently per attempt.
func (s *Simulator) Resolve(method Method, amount int64) Outcome {
	p, ok := profiles[method]
	if !ok {
		return Outcome{OK: false, Reason: "unsupported payment method"}
	}

	s.Sleep(p.delay)

	charged := amount
	if method == MethodCOD {
		charged += s.CODSurcharge
	} else if s.Rand() >= p.successRate {
		return Outcome{OK: false, Reason: p.failReason}
	}

	return Outcome{
		OK:        true,
		Reference: p.refPrefix + strconv.FormatInt(time.Now().UnixMilli(), 10),
		Charged:   charged,
	}
}
