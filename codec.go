package user

import jsoniter "github.com/json-iterator/go"

// json is the codec for every body this package reads or writes.
var json = jsoniter.ConfigCompatibleWithStandardLibrary
