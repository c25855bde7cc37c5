package config_test

import (
	"os"

	"github.com/spf13/cobra"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lud4ik/cmdnet/config"
)

var _ = Describe("BindFlags and Load", func() {
	It("resolves the documented defaults when nothing is overridden", func() {
		cmd := &cobra.Command{Use: "test", RunE: func(cmd *cobra.Command, args []string) error { return nil }}
		config.BindFlags(cmd)
		cmd.SetArgs([]string{})
		Expect(cmd.Execute()).To(Succeed())

		cfg := config.Load(cmd)
		Expect(cfg.Host).To(Equal("127.0.0.1"))
		Expect(cfg.Port).To(Equal(50007))
		Expect(cfg.Addr()).To(Equal("127.0.0.1:50007"))
	})

	It("lets an explicit flag override the default", func() {
		cmd := &cobra.Command{Use: "test", RunE: func(cmd *cobra.Command, args []string) error { return nil }}
		config.BindFlags(cmd)
		cmd.SetArgs([]string{"--port", "9000"})
		Expect(cmd.Execute()).To(Succeed())

		cfg := config.Load(cmd)
		Expect(cfg.Port).To(Equal(9000))
	})

	It("lets CMDNET_HOST override the default", func() {
		Expect(os.Setenv("CMDNET_HOST", "10.0.0.5")).To(Succeed())
		defer os.Unsetenv("CMDNET_HOST")

		cmd := &cobra.Command{Use: "test", RunE: func(cmd *cobra.Command, args []string) error { return nil }}
		config.BindFlags(cmd)
		cmd.SetArgs([]string{})
		Expect(cmd.Execute()).To(Succeed())

		cfg := config.Load(cmd)
		Expect(cfg.Host).To(Equal("10.0.0.5"))
	})
})
