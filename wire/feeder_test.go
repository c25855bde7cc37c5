package wire_test

import (
	"encoding/binary"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lud4ik/cmdnet/wire"
)

func frame(payload []byte) []byte {
	out := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(out, uint32(len(payload)))
	copy(out[4:], payload)
	return out
}

var _ = Describe("Feeder", func() {
	var reg *wire.Registry
	var pingSpec wire.Spec

	BeforeEach(func() {
		reg = wire.NewRegistry()
		var err error
		pingSpec, err = wire.NewSpec("Ping", 2)
		Expect(err).NotTo(HaveOccurred())
		_, err = reg.Register(pingSpec)
		Expect(err).NotTo(HaveOccurred())
		reg.Freeze()
	})

	It("emits a packet once a full frame arrives in one chunk", func() {
		f := wire.NewFeeder(reg)
		pkt, err := f.Feed(frame([]byte{0x02}))
		Expect(err).NotTo(HaveOccurred())
		Expect(pkt).NotTo(BeNil())
		Expect(pkt.Spec.ID).To(Equal(byte(2)))
	})

	It("reassembles a frame split at arbitrary, including single-byte, boundaries", func() {
		f := wire.NewFeeder(reg)
		whole := frame([]byte{0x02})

		var last *wire.Packet
		for _, b := range whole {
			pkt, err := f.Feed([]byte{b})
			Expect(err).NotTo(HaveOccurred())
			if pkt != nil {
				last = pkt
			}
		}
		Expect(last).NotTo(BeNil())
		Expect(last.Spec.ID).To(Equal(byte(2)))
	})

	It("reassembles a frame split exactly at the length-prefix boundary", func() {
		f := wire.NewFeeder(reg)
		whole := frame([]byte{0x02})

		pkt, err := f.Feed(whole[:3])
		Expect(err).NotTo(HaveOccurred())
		Expect(pkt).To(BeNil())

		pkt, err = f.Feed(whole[3:])
		Expect(err).NotTo(HaveOccurred())
		Expect(pkt).NotTo(BeNil())
	})

	It("processes a concatenation of multiple frames across chunk boundaries in order, one per call", func() {
		f := wire.NewFeeder(reg)
		stream := append(frame([]byte{0x02}), frame([]byte{0x02})...)

		var packets []*wire.Packet
		for i := 0; i < len(stream); i += 3 {
			end := i + 3
			if end > len(stream) {
				end = len(stream)
			}
			pkt, err := f.Feed(stream[i:end])
			Expect(err).NotTo(HaveOccurred())
			if pkt != nil {
				packets = append(packets, pkt)
			}
		}
		// Feed returns at most one packet per call, so drain with empty
		// chunks until it reports that no whole frame is left buffered.
		for {
			pkt, err := f.Feed(nil)
			Expect(err).NotTo(HaveOccurred())
			if pkt == nil {
				break
			}
			packets = append(packets, pkt)
		}

		Expect(packets).To(HaveLen(2))
	})

	It("rejects a length prefix larger than the maximum frame size", func() {
		f := wire.NewFeeder(reg)
		oversize := make([]byte, 4)
		binary.LittleEndian.PutUint32(oversize, wire.MaxFrameSize+1)

		_, err := f.Feed(oversize)
		Expect(err).To(HaveOccurred())
	})

	It("consumes an unknown command byte as a bad frame and stays synchronized", func() {
		f := wire.NewFeeder(reg)
		bad := frame([]byte{0xFE})
		good := frame([]byte{0x02})

		pkt, err := f.Feed(bad)
		Expect(err).To(HaveOccurred())
		Expect(pkt).To(BeNil())

		pkt, err = f.Feed(good)
		Expect(err).NotTo(HaveOccurred())
		Expect(pkt).NotTo(BeNil())
	})
})
