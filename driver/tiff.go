package driver

import (
	g "github.com/reoring/tsspec/dsl"
	"github.com/reoring/tsspec/dtype"
	"github.com/reoring/tsspec/kvstore"
	"github.com/reoring/tsspec/spec"
)

// Tiff is the read-only tiff driver.
var Tiff = register(Capabilities{
	Driver:      "tiff",
	Description: "single TIFF image read through a kvstore",
	DataTypes:   dtype.Tiff.Strings(),
	KvStore:     true,
}, g.Object("tiff").Extend(Base).
	Field("kvstore", g.OneOf(kvstore.Category)).Required().
	Field("page", g.Int().NonNegative()).Describe("image file directory to read").
	Field("cache_pool", spec.CachePoolResource).
	Field("data_copy_concurrency", spec.ConcurrencyResource).
	Refine("rank agreement", rankAgreement(nil)).
	Refine("supported dtype", dtypeIn("tiff", dtype.Tiff)).
	MustBuild())

// Auto detects the format of the data in a kvstore. Members of the
// detected driver pass through.
var Auto = register(Capabilities{
	Driver:      "auto",
	Description: "format auto-detection over a kvstore",
	DataTypes:   dtype.All.Strings(),
	KvStore:     true,
}, g.Object("auto").Extend(Base).
	Field("kvstore", g.OneOf(kvstore.Category)).Required().
	UnknownPassthrough().
	Refine("rank agreement", rankAgreement(nil)).
	MustBuild())
