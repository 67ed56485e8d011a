// Package coordinator is a hand-maintained Go binding for the on-chain
// coordinator contract (§6): the external party that emits
// MetaComputeRequest/MetaComputeResult/MetaChallenge and exposes
// CHALLENGE_WINDOW, submitMetaComputeResult, submitMetaChallenge. The
// contract itself is out of scope (§1 Non-goals); this package only
// binds its observable surface.
package coordinator

import (
	"errors"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

// Reference imports to suppress errors if they are not otherwise used.
var (
	_ = errors.New
	_ = big.NewInt
	_ = strings.NewReader
	_ = ethereum.NotFound
	_ = bind.Bind
	_ = common.Big1
	_ = types.BloomLookup
	_ = event.NewSubscription
	_ = abi.ConvertType
)

// MetaData contains the ABI used to generate this binding. There is no
// deployment bytecode here: the coordinator contract is deployed and
// operated externally (§1 Non-goals).
var MetaData = &bind.MetaData{
	ABI: `[
		{"type":"function","name":"CHALLENGE_WINDOW","inputs":[],"outputs":[{"name":"","type":"uint256","internalType":"uint256"}],"stateMutability":"view"},
		{"type":"function","name":"submitMetaComputeResult","inputs":[{"name":"computeId","type":"uint256","internalType":"uint256"},{"name":"metaCommitment","type":"bytes32","internalType":"bytes32"},{"name":"resultsId","type":"bytes32","internalType":"bytes32"}],"outputs":[],"stateMutability":"nonpayable"},
		{"type":"function","name":"submitMetaChallenge","inputs":[{"name":"computeId","type":"uint256","internalType":"uint256"},{"name":"subJobFailed","type":"uint32","internalType":"uint32"}],"outputs":[],"stateMutability":"nonpayable"},
		{"type":"event","name":"MetaComputeRequest","inputs":[{"name":"computeId","type":"uint256","indexed":true,"internalType":"uint256"},{"name":"jobDescriptionId","type":"bytes32","indexed":false,"internalType":"bytes32"}],"anonymous":false},
		{"type":"event","name":"MetaComputeResult","inputs":[{"name":"computeId","type":"uint256","indexed":true,"internalType":"uint256"},{"name":"commitment","type":"bytes32","indexed":false,"internalType":"bytes32"},{"name":"resultsId","type":"bytes32","indexed":false,"internalType":"bytes32"}],"anonymous":false},
		{"type":"event","name":"MetaChallenge","inputs":[{"name":"computeId","type":"uint256","indexed":true,"internalType":"uint256"},{"name":"subJobFailed","type":"uint32","indexed":false,"internalType":"uint32"}],"anonymous":false}
	]`,
}

// ABI is the parsed input ABI used to generate this binding.
var ABI = MetaData.ABI

// Coordinator is a Go binding around a deployed coordinator contract.
type Coordinator struct {
	CoordinatorCaller
	CoordinatorTransactor
	CoordinatorFilterer
}

// CoordinatorCaller provides read-only access to the coordinator.
type CoordinatorCaller struct {
	contract *bind.BoundContract
}

// CoordinatorTransactor provides write access to the coordinator.
type CoordinatorTransactor struct {
	contract *bind.BoundContract
}

// CoordinatorFilterer provides log filtering access to the coordinator.
type CoordinatorFilterer struct {
	contract *bind.BoundContract
}

// New binds a Coordinator to address, using backend for calls,
// transactions, and log filtering.
func New(address common.Address, backend bind.ContractBackend) (*Coordinator, error) {
	contract, err := bindCoordinator(address, backend, backend, backend)
	if err != nil {
		return nil, err
	}
	return &Coordinator{
		CoordinatorCaller:     CoordinatorCaller{contract: contract},
		CoordinatorTransactor: CoordinatorTransactor{contract: contract},
		CoordinatorFilterer:   CoordinatorFilterer{contract: contract},
	}, nil
}

func bindCoordinator(address common.Address, caller bind.ContractCaller, transactor bind.ContractTransactor, filterer bind.ContractFilterer) (*bind.BoundContract, error) {
	parsed, err := MetaData.GetAbi()
	if err != nil {
		return nil, err
	}
	return bind.NewBoundContract(address, *parsed, caller, transactor, filterer), nil
}

// ChallengeWindow is a free data retrieval call binding the contract
// method CHALLENGE_WINDOW.
//
// Solidity: function CHALLENGE_WINDOW() view returns(uint256)
func (c *CoordinatorCaller) ChallengeWindow(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	err := c.contract.Call(opts, &out, "CHALLENGE_WINDOW")
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// SubmitMetaComputeResult is a paid mutator transaction binding the
// contract method submitMetaComputeResult.
//
// Solidity: function submitMetaComputeResult(uint256 computeId, bytes32 metaCommitment, bytes32 resultsId) returns()
func (t *CoordinatorTransactor) SubmitMetaComputeResult(opts *bind.TransactOpts, computeId *big.Int, metaCommitment [32]byte, resultsId [32]byte) (*types.Transaction, error) {
	return t.contract.Transact(opts, "submitMetaComputeResult", computeId, metaCommitment, resultsId)
}

// SubmitMetaChallenge is a paid mutator transaction binding the
// contract method submitMetaChallenge.
//
// Solidity: function submitMetaChallenge(uint256 computeId, uint32 subJobFailed) returns()
func (t *CoordinatorTransactor) SubmitMetaChallenge(opts *bind.TransactOpts, computeId *big.Int, subJobFailed uint32) (*types.Transaction, error) {
	return t.contract.Transact(opts, "submitMetaChallenge", computeId, subJobFailed)
}

// MetaComputeRequest represents a MetaComputeRequest event raised by the
// coordinator contract.
type MetaComputeRequest struct {
	ComputeId        *big.Int
	JobDescriptionId [32]byte
	Raw              types.Log
}

// FilterMetaComputeRequest is a free log retrieval operation binding the
// contract event MetaComputeRequest.
func (f *CoordinatorFilterer) FilterMetaComputeRequest(opts *bind.FilterOpts, computeId []*big.Int) (*MetaComputeRequestIterator, error) {
	var computeIdRule []interface{}
	for _, id := range computeId {
		computeIdRule = append(computeIdRule, id)
	}
	logs, sub, err := f.contract.FilterLogs(opts, "MetaComputeRequest", computeIdRule)
	if err != nil {
		return nil, err
	}
	return &MetaComputeRequestIterator{contract: f.contract, event: "MetaComputeRequest", logs: logs, sub: sub}, nil
}

// ParseMetaComputeRequest unpacks log into a MetaComputeRequest event.
func (f *CoordinatorFilterer) ParseMetaComputeRequest(log types.Log) (*MetaComputeRequest, error) {
	event := new(MetaComputeRequest)
	if err := f.contract.UnpackLog(event, "MetaComputeRequest", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}

// MetaComputeRequestIterator iterates over the raw logs and unpacked
// data for MetaComputeRequest events.
type MetaComputeRequestIterator struct {
	Event    *MetaComputeRequest
	contract *bind.BoundContract
	event    string
	logs     chan types.Log
	sub      ethereum.Subscription
	done     bool
	fail     error
}

// Next advances the iterator to the subsequent event, returning whether
// there are any more events found. In case of a retrieval or parsing
// error, false is returned and Error() can be queried for the exact
// failure.
func (it *MetaComputeRequestIterator) Next() bool {
	if it.fail != nil {
		return false
	}
	if it.done {
		select {
		case log := <-it.logs:
			it.Event = new(MetaComputeRequest)
			if err := it.contract.UnpackLog(it.Event, it.event, log); err != nil {
				it.fail = err
				return false
			}
			it.Event.Raw = log
			return true
		default:
			return false
		}
	}
	select {
	case log := <-it.logs:
		it.Event = new(MetaComputeRequest)
		if err := it.contract.UnpackLog(it.Event, it.event, log); err != nil {
			it.fail = err
			return false
		}
		it.Event.Raw = log
		return true
	case err := <-it.sub.Err():
		it.done = true
		it.fail = err
		return it.Next()
	}
}

// Error returns any retrieval or parsing error encountered.
func (it *MetaComputeRequestIterator) Error() error { return it.fail }

// Close unsubscribes the iterator's underlying log subscription.
func (it *MetaComputeRequestIterator) Close() error {
	it.sub.Unsubscribe()
	return nil
}

// MetaComputeResult represents a MetaComputeResult event raised by the
// coordinator contract.
type MetaComputeResult struct {
	ComputeId  *big.Int
	Commitment [32]byte
	ResultsId  [32]byte
	Raw        types.Log
}

// FilterMetaComputeResult is a free log retrieval operation binding the
// contract event MetaComputeResult.
func (f *CoordinatorFilterer) FilterMetaComputeResult(opts *bind.FilterOpts, computeId []*big.Int) (*MetaComputeResultIterator, error) {
	var computeIdRule []interface{}
	for _, id := range computeId {
		computeIdRule = append(computeIdRule, id)
	}
	logs, sub, err := f.contract.FilterLogs(opts, "MetaComputeResult", computeIdRule)
	if err != nil {
		return nil, err
	}
	return &MetaComputeResultIterator{contract: f.contract, event: "MetaComputeResult", logs: logs, sub: sub}, nil
}

// ParseMetaComputeResult unpacks log into a MetaComputeResult event.
func (f *CoordinatorFilterer) ParseMetaComputeResult(log types.Log) (*MetaComputeResult, error) {
	event := new(MetaComputeResult)
	if err := f.contract.UnpackLog(event, "MetaComputeResult", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}

// MetaComputeResultIterator iterates over the raw logs and unpacked
// data for MetaComputeResult events.
type MetaComputeResultIterator struct {
	Event    *MetaComputeResult
	contract *bind.BoundContract
	event    string
	logs     chan types.Log
	sub      ethereum.Subscription
	done     bool
	fail     error
}

// Next advances the iterator to the subsequent event, returning whether
// there are any more events found. In case of a retrieval or parsing
// error, false is returned and Error() can be queried for the exact
// failure.
func (it *MetaComputeResultIterator) Next() bool {
	if it.fail != nil {
		return false
	}
	if it.done {
		select {
		case log := <-it.logs:
			it.Event = new(MetaComputeResult)
			if err := it.contract.UnpackLog(it.Event, it.event, log); err != nil {
				it.fail = err
				return false
			}
			it.Event.Raw = log
			return true
		default:
			return false
		}
	}
	select {
	case log := <-it.logs:
		it.Event = new(MetaComputeResult)
		if err := it.contract.UnpackLog(it.Event, it.event, log); err != nil {
			it.fail = err
			return false
		}
		it.Event.Raw = log
		return true
	case err := <-it.sub.Err():
		it.done = true
		it.fail = err
		return it.Next()
	}
}

// Error returns any retrieval or parsing error encountered.
func (it *MetaComputeResultIterator) Error() error { return it.fail }

// Close unsubscribes the iterator's underlying log subscription.
func (it *MetaComputeResultIterator) Close() error {
	it.sub.Unsubscribe()
	return nil
}

// MetaChallenge represents a MetaChallenge event raised by the
// coordinator contract.
type MetaChallenge struct {
	ComputeId    *big.Int
	SubJobFailed uint32
	Raw          types.Log
}

// FilterMetaChallenge is a free log retrieval operation binding the
// contract event MetaChallenge.
func (f *CoordinatorFilterer) FilterMetaChallenge(opts *bind.FilterOpts, computeId []*big.Int) (*MetaChallengeIterator, error) {
	var computeIdRule []interface{}
	for _, id := range computeId {
		computeIdRule = append(computeIdRule, id)
	}
	logs, sub, err := f.contract.FilterLogs(opts, "MetaChallenge", computeIdRule)
	if err != nil {
		return nil, err
	}
	return &MetaChallengeIterator{contract: f.contract, event: "MetaChallenge", logs: logs, sub: sub}, nil
}

// ParseMetaChallenge unpacks log into a MetaChallenge event.
func (f *CoordinatorFilterer) ParseMetaChallenge(log types.Log) (*MetaChallenge, error) {
	event := new(MetaChallenge)
	if err := f.contract.UnpackLog(event, "MetaChallenge", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}

// MetaChallengeIterator iterates over the raw logs and unpacked data
// for MetaChallenge events.
type MetaChallengeIterator struct {
	Event    *MetaChallenge
	contract *bind.BoundContract
	event    string
	logs     chan types.Log
	sub      ethereum.Subscription
	done     bool
	fail     error
}

// Next advances the iterator to the subsequent event, returning whether
// there are any more events found. In case of a retrieval or parsing
// error, false is returned and Error() can be queried for the exact
// failure.
func (it *MetaChallengeIterator) Next() bool {
	if it.fail != nil {
		return false
	}
	if it.done {
		select {
		case log := <-it.logs:
			it.Event = new(MetaChallenge)
			if err := it.contract.UnpackLog(it.Event, it.event, log); err != nil {
				it.fail = err
				return false
			}
			it.Event.Raw = log
			return true
		default:
			return false
		}
	}
	select {
	case log := <-it.logs:
		it.Event = new(MetaChallenge)
		if err := it.contract.UnpackLog(it.Event, it.event, log); err != nil {
			it.fail = err
			return false
		}
		it.Event.Raw = log
		return true
	case err := <-it.sub.Err():
		it.done = true
		it.fail = err
		return it.Next()
	}
}

// Error returns any retrieval or parsing error encountered.
func (it *MetaChallengeIterator) Error() error { return it.fail }

// Close unsubscribes the iterator's underlying log subscription.
func (it *MetaChallengeIterator) Close() error {
	it.sub.Unsubscribe()
	return nil
}
