package openframe_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestOpenFrame(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "OpenFrame Suite")
}
