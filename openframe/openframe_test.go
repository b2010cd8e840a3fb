package openframe_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/chipfoundry/caravelsim/openframe"
)

// write is a signal assignment seen by the fake handle.
type write struct {
	cycle int
	name  string
	value uint64
}

type fakeSignal struct {
	h          *fakeHandle
	name       string
	value      uint64
	unresolved bool
}

func (s *fakeSignal) Set(v uint64) error {
	s.value = v
	s.h.writes = append(s.h.writes, write{s.h.cycle, s.name, v})
	return nil
}

func (s *fakeSignal) Get() (uint64, bool, error) {
	return s.value, !s.unresolved, nil
}

// fakeHandle is an in-memory testbench. Signals spring into existence when
// first looked up unless listed as missing.
type fakeHandle struct {
	signals  map[string]*fakeSignal
	missing  map[string]bool
	plusargs map[string]string
	writes   []write
	cycle    int
	period   int
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{
		signals:  make(map[string]*fakeSignal),
		missing:  make(map[string]bool),
		plusargs: map[string]string{},
	}
}

func (h *fakeHandle) Signal(name string) (openframe.Signal, error) {
	if h.missing[name] {
		return nil, fmt.Errorf("no such signal")
	}
	s, ok := h.signals[name]
	if !ok {
		s = &fakeSignal{h: h, name: name}
		h.signals[name] = s
	}
	return s, nil
}

func (h *fakeHandle) ClockCycles(ctx context.Context, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.cycle += n
	return nil
}

func (h *fakeHandle) StartClock(periodNS int) error {
	h.period = periodNS
	return nil
}

func (h *fakeHandle) Plusargs() map[string]string { return h.plusargs }

func (h *fakeHandle) value(name string) uint64 {
	if s, ok := h.signals[name]; ok {
		return s.value
	}
	return 0
}

func (h *fakeHandle) writesTo(name string) []write {
	var out []write
	for _, w := range h.writes {
		if w.name == name {
			out = append(out, w)
		}
	}
	return out
}

var _ = Describe("OpenFrame environment", func() {
	var (
		ctx context.Context
		h   *fakeHandle
		env *openframe.Env
	)

	BeforeEach(func() {
		ctx = context.Background()
		h = newFakeHandle()
	})

	JustBeforeEach(func() {
		var err error
		env, err = openframe.New(zerolog.Nop(), h)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("pin count", func() {
		It("defaults to 44 GPIOs", func() {
			Expect(env.Pins()).To(Equal(44))
		})

		Context("with OPENFRAME_IO_PADS set", func() {
			BeforeEach(func() {
				h.plusargs = map[string]string{"OPENFRAME_IO_PADS": "38", "_internal": "x", "a+b": "y"}
			})

			It("uses the plusarg", func() {
				Expect(env.Pins()).To(Equal(38))
			})

			It("drops internal plusargs from the macros", func() {
				Expect(env.Macros()).To(Equal(map[string]string{"OPENFRAME_IO_PADS": "38"}))
			})
		})

		It("rejects a malformed pin count", func() {
			h.plusargs = map[string]string{"OPENFRAME_IO_PADS": "many"}
			_, err := openframe.New(zerolog.Nop(), h)
			Expect(err).To(MatchError(ContainSubstring("OPENFRAME_IO_PADS")))
		})
	})

	Describe("PowerUp", func() {
		It("holds the rails low for 10 cycles then raises the supplies for 10", func() {
			Expect(env.PowerUp(ctx)).To(Succeed())

			Expect(h.writesTo("vccd1_tb")).To(Equal([]write{
				{0, "vccd1_tb", 0},
				{10, "vccd1_tb", 1},
			}))
			Expect(h.cycle).To(Equal(20))
		})

		It("keeps the ground rails at 0", func() {
			Expect(env.PowerUp(ctx)).To(Succeed())
			for _, rail := range []string{"vssio_tb", "vssa_tb", "vssd_tb", "vssa1_tb", "vssa2_tb", "vssd1_tb", "vssd2_tb"} {
				Expect(h.value(rail)).To(BeZero(), rail)
				Expect(h.writesTo(rail)).To(HaveLen(2), rail)
			}
			for _, rail := range []string{"vddio_tb", "vdda_tb", "vccd_tb", "vdda1_tb", "vdda2_tb", "vccd1_tb", "vccd2_tb"} {
				Expect(h.value(rail)).To(Equal(uint64(1)), rail)
			}
		})

		It("reports a missing rail", func() {
			h.missing["vdda2_tb"] = true
			Expect(env.PowerUp(ctx)).To(MatchError(ContainSubstring("vdda2_tb")))
		})
	})

	Describe("Reset", func() {
		It("asserts reset for 20 cycles and releases it for one", func() {
			Expect(env.Reset(ctx)).To(Succeed())
			Expect(h.writesTo("resetb_tb")).To(Equal([]write{
				{0, "resetb_tb", 0},
				{20, "resetb_tb", 1},
			}))
			Expect(h.cycle).To(Equal(21))
		})

		It("stops when the context is done", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			Expect(env.Reset(cancelled)).To(MatchError(context.Canceled))
		})
	})

	Describe("StartUp", func() {
		It("powers up, resets and disables every GPIO driver", func() {
			Expect(env.StartUp(ctx)).To(Succeed())
			Expect(h.cycle).To(Equal(20 + 21 + 1))
			for i := 0; i < 44; i++ {
				Expect(h.writesTo(fmt.Sprintf("gpio%d_en", i))).To(Equal([]write{{41, fmt.Sprintf("gpio%d_en", i), 0}}))
			}
			Expect(h.signals).NotTo(HaveKey("gpio44_en"))
		})
	})

	Describe("driving GPIOs", func() {
		It("enables the driver and drives the value", func() {
			Expect(env.DriveGPIO(5, 1)).To(Succeed())
			Expect(h.value("gpio5_en")).To(Equal(uint64(1)))
			Expect(h.value("gpio5")).To(Equal(uint64(1)))

			Expect(env.ReleaseGPIO(5)).To(Succeed())
			Expect(h.value("gpio5_en")).To(BeZero())
		})

		It("drives a range lowest bit first", func() {
			Expect(env.DriveGPIORange(openframe.Range{High: 7, Low: 4}, 0b1010)).To(Succeed())
			Expect(h.value("gpio4")).To(BeZero())
			Expect(h.value("gpio5")).To(Equal(uint64(1)))
			Expect(h.value("gpio6")).To(BeZero())
			Expect(h.value("gpio7")).To(Equal(uint64(1)))
			for i := 4; i <= 7; i++ {
				Expect(h.value(fmt.Sprintf("gpio%d_en", i))).To(Equal(uint64(1)))
			}

			Expect(env.ReleaseGPIORange(openframe.Range{High: 7, Low: 4})).To(Succeed())
			for i := 4; i <= 7; i++ {
				Expect(h.value(fmt.Sprintf("gpio%d_en", i))).To(BeZero())
			}
		})

		It("ignores pins out of range", func() {
			Expect(env.DriveGPIO(44, 1)).To(Succeed())
			Expect(env.DriveGPIO(-1, 1)).To(Succeed())
			Expect(env.ReleaseGPIO(50)).To(Succeed())
			Expect(h.writes).To(BeEmpty())
		})
	})

	Describe("monitoring GPIOs", func() {
		It("reads the monitor signal", func() {
			s, _ := h.Signal("gpio3_monitor")
			Expect(s.Set(1)).To(Succeed())
			Expect(env.MonitorGPIO(3)).To(Equal(uint64(1)))
		})

		It("reads unresolved values as 0", func() {
			s, _ := h.Signal("gpio3_monitor")
			s.(*fakeSignal).value = 1
			s.(*fakeSignal).unresolved = true
			Expect(env.MonitorGPIO(3)).To(BeZero())
		})

		It("reads pins out of range as 0", func() {
			Expect(env.MonitorGPIO(44)).To(BeZero())
			Expect(h.signals).To(BeEmpty())
		})

		It("packs a range with the low pin at bit 0", func() {
			for i, v := range map[int]uint64{8: 1, 9: 0, 10: 1, 11: 1} {
				s, _ := h.Signal(fmt.Sprintf("gpio%d_monitor", i))
				Expect(s.Set(v)).To(Succeed())
			}
			Expect(env.MonitorGPIORange(openframe.Range{High: 11, Low: 8})).To(Equal(uint64(0b1101)))
		})
	})

	It("starts the clock", func() {
		Expect(env.SetupClock(25)).To(Succeed())
		Expect(h.period).To(Equal(25))
	})
})
