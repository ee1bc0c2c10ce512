package backend_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/qrunlab/qrun/backend"
)

var _ = Describe("Serialization", func() {
	newConfigured := func() *backend.Backend {
		b := newBackend(3, backend.WithSeed(666, 777), backend.WithRepetitions(7))
		b.SetImperfectReadoutModel(backend.NewUniformReadoutModel(3, 0.1, 0.2))
		return b
	}

	It("should round trip through the binary format", func() {
		original := newConfigured()
		data, err := original.MarshalBinary()
		Expect(err).NotTo(HaveOccurred())

		var restored backend.Backend
		Expect(restored.UnmarshalBinary(data)).To(Succeed())

		Expect(restored.QubitCount()).To(Equal(3))
		Expect(restored.Repetitions()).To(Equal(7))

		want, err := original.RunCircuit(sampledCircuit(20))
		Expect(err).NotTo(HaveOccurred())
		got, err := restored.RunCircuit(sampledCircuit(20))
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Bit).To(Equal(want.Bit))
	})

	It("should round trip through the text format", func() {
		original := newConfigured()
		data, err := json.Marshal(original)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"qubit_count":3`))
		Expect(string(data)).To(ContainSubstring(`"seed_words":[666,777]`))

		var restored backend.Backend
		Expect(json.Unmarshal(data, &restored)).To(Succeed())

		want, err := original.RunCircuit(sampledCircuit(20))
		Expect(err).NotTo(HaveOccurred())
		got, err := restored.RunCircuit(sampledCircuit(20))
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Bit).To(Equal(want.Bit))
	})

	It("should reject malformed binary data", func() {
		var restored backend.Backend

		Expect(restored.UnmarshalBinary([]byte("not a backend"))).NotTo(Succeed())
	})

	It("should reject configurations without qubits", func() {
		var restored backend.Backend

		err := json.Unmarshal([]byte(`{"qubit_count":0}`), &restored)

		Expect(err).To(HaveOccurred())
	})
})
