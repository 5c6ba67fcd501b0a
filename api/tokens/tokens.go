// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokens

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/meterio/nft-auction/api/utils"
	"github.com/meterio/nft-auction/builtin"
	"github.com/meterio/nft-auction/builtin/erc721"
	"github.com/meterio/nft-auction/logdb"
	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/runtime"
	"github.com/meterio/nft-auction/script/tokens"
	"github.com/meterio/nft-auction/state"
	"github.com/pkg/errors"
)

// Tokens serves the ledger's NFT and ERC20 contracts.
type Tokens struct {
	rt *runtime.Runtime
	db *logdb.LogDB
}

func New(rt *runtime.Runtime, db *logdb.LogDB) *Tokens {
	return &Tokens{rt, db}
}

func parseAddress(req *http.Request, name string) (meter.Address, error) {
	addr, err := meter.ParseAddress(mux.Vars(req)[name])
	if err != nil {
		return meter.Address{}, utils.BadRequest(errors.WithMessage(err, name))
	}
	return addr, nil
}

func parseTokenID(req *http.Request) (*big.Int, error) {
	var id math.HexOrDecimal256
	if err := id.UnmarshalText([]byte(mux.Vars(req)["id"])); err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "id"))
	}
	return (*big.Int)(&id), nil
}

func (t *Tokens) call(w http.ResponseWriter, req *http.Request, build func(contract meter.Address, r *Request) *tokens.TokensBody) error {
	contract, err := parseAddress(req, "contract")
	if err != nil {
		return err
	}
	var r Request
	if err := utils.ParseJSON(req.Body, &r); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	out, err := utils.Execute(req.Context(), t.rt, r.From, nil, build(contract, &r))
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Receipt{TxID: out.TxID, Seq: out.Seq})
}

func (t *Tokens) handleGetNFT(w http.ResponseWriter, req *http.Request) error {
	contract, err := parseAddress(req, "contract")
	if err != nil {
		return err
	}
	id, err := parseTokenID(req)
	if err != nil {
		return err
	}
	var nft *NFT
	err = t.rt.View(func(st *state.State) (err error) {
		nft, err = loadNFT(builtin.NFT(contract, st), id)
		if err != nil {
			return
		}
		return st.Err()
	})
	if err != nil {
		if errors.Cause(err) == erc721.ErrNonexistentToken {
			return utils.NotFound(err)
		}
		return err
	}
	return utils.WriteJSON(w, nft)
}

func loadNFT(token *erc721.ERC721, id *big.Int) (*NFT, error) {
	owner, err := token.OwnerOf(id)
	if err != nil {
		return nil, err
	}
	return &NFT{
		Contract: token.Address(),
		TokenID:  hexOrDecimal(id),
		Owner:    owner,
		Approved: token.GetApproved(id),
		TokenURI: token.TokenURI(id),
		InEscrow: owner == meter.AuctionAccountAddr,
	}, nil
}

func (t *Tokens) handleGetMetadata(w http.ResponseWriter, req *http.Request) error {
	contract, err := parseAddress(req, "contract")
	if err != nil {
		return err
	}
	id, err := parseTokenID(req)
	if err != nil {
		return err
	}
	meta := &Metadata{}
	err = t.rt.View(func(st *state.State) (err error) {
		token := builtin.NFT(contract, st)
		if meta.NFT, err = loadNFT(token, id); err != nil {
			return
		}
		meta.TotalSupply = token.TotalSupply()
		return st.Err()
	})
	if err != nil {
		if errors.Cause(err) == erc721.ErrNonexistentToken {
			return utils.NotFound(err)
		}
		return err
	}
	floors, err := t.db.FloorPrices(req.Context(), contract)
	if err != nil {
		return err
	}
	meta.FloorPrices = convertFloors(floors)
	return utils.WriteJSON(w, meta)
}

func (t *Tokens) handleFloorPrice(w http.ResponseWriter, req *http.Request) error {
	contract, err := parseAddress(req, "contract")
	if err != nil {
		return err
	}
	floors, err := t.db.FloorPrices(req.Context(), contract)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Floor{Contract: contract, Prices: convertFloors(floors)})
}

func (t *Tokens) handleWalletNFTs(w http.ResponseWriter, req *http.Request) error {
	owner, err := parseAddress(req, "address")
	if err != nil {
		return err
	}
	var filter []meter.Address
	for _, s := range req.URL.Query()["contract"] {
		addr, err := meter.ParseAddress(s)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "contract"))
		}
		filter = append(filter, addr)
	}

	wallet := &Wallet{Owner: owner, NFTs: make([]*NFT, 0)}
	err = t.rt.View(func(st *state.State) error {
		contracts := filter
		if len(contracts) == 0 {
			contracts = builtin.NFTRegistry(st).Contracts()
		}
		for _, contract := range contracts {
			token := builtin.NFT(contract, st)
			for _, id := range token.TokensOfOwner(owner) {
				nft, err := loadNFT(token, id)
				if err != nil {
					return err
				}
				wallet.NFTs = append(wallet.NFTs, nft)
			}
		}
		return st.Err()
	})
	if err != nil {
		return err
	}
	wallet.Total = len(wallet.NFTs)
	return utils.WriteJSON(w, wallet)
}

func (t *Tokens) handleGetOperator(w http.ResponseWriter, req *http.Request) error {
	contract, err := parseAddress(req, "contract")
	if err != nil {
		return err
	}
	owner, err := parseAddress(req, "owner")
	if err != nil {
		return err
	}
	operator, err := parseAddress(req, "operator")
	if err != nil {
		return err
	}
	op := &Operator{Owner: owner, Operator: operator}
	t.rt.View(func(st *state.State) error {
		op.Approved = builtin.NFT(contract, st).IsApprovedForAll(owner, operator)
		return nil
	})
	return utils.WriteJSON(w, op)
}

func (t *Tokens) handleMintNFT(w http.ResponseWriter, req *http.Request) error {
	return t.call(w, req, func(contract meter.Address, r *Request) *tokens.TokensBody {
		body := tokens.NewNFTMintBody(contract, r.To, r.tokenID())
		body.URI = r.TokenURI
		return body
	})
}

func (t *Tokens) handleApproveNFT(w http.ResponseWriter, req *http.Request) error {
	id, err := parseTokenID(req)
	if err != nil {
		return err
	}
	return t.call(w, req, func(contract meter.Address, r *Request) *tokens.TokensBody {
		return tokens.NewNFTApproveBody(contract, r.To, id)
	})
}

func (t *Tokens) handleTransferNFT(w http.ResponseWriter, req *http.Request) error {
	id, err := parseTokenID(req)
	if err != nil {
		return err
	}
	return t.call(w, req, func(contract meter.Address, r *Request) *tokens.TokensBody {
		return tokens.NewNFTTransferBody(contract, r.owner(), r.To, id)
	})
}

func (t *Tokens) handleSetOperator(w http.ResponseWriter, req *http.Request) error {
	return t.call(w, req, func(contract meter.Address, r *Request) *tokens.TokensBody {
		return tokens.NewNFTApprovalForAllBody(contract, r.To, r.Approved)
	})
}

func (t *Tokens) handleGetERC20(w http.ResponseWriter, req *http.Request) error {
	contract, err := parseAddress(req, "contract")
	if err != nil {
		return err
	}
	info := &ERC20{Contract: contract}
	if err := t.rt.View(func(st *state.State) error {
		token := builtin.ERC20(contract, st)
		info.Decimals = token.Decimals()
		info.TotalSupply = hexOrDecimal(token.TotalSupply())
		return st.Err()
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, info)
}

func (t *Tokens) handleGetAllowance(w http.ResponseWriter, req *http.Request) error {
	contract, err := parseAddress(req, "contract")
	if err != nil {
		return err
	}
	owner, err := parseAddress(req, "owner")
	if err != nil {
		return err
	}
	spender, err := parseAddress(req, "spender")
	if err != nil {
		return err
	}
	allowance := &Allowance{Owner: owner, Spender: spender}
	if err := t.rt.View(func(st *state.State) error {
		allowance.Amount = hexOrDecimal(builtin.ERC20(contract, st).Allowance(owner, spender))
		return st.Err()
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, allowance)
}

func (t *Tokens) handleMintERC20(w http.ResponseWriter, req *http.Request) error {
	return t.call(w, req, func(contract meter.Address, r *Request) *tokens.TokensBody {
		return tokens.NewERC20MintBody(contract, r.To, r.amount(), r.Decimals)
	})
}

func (t *Tokens) handleApproveERC20(w http.ResponseWriter, req *http.Request) error {
	return t.call(w, req, func(contract meter.Address, r *Request) *tokens.TokensBody {
		return tokens.NewERC20ApproveBody(contract, r.To, r.amount())
	})
}

func (t *Tokens) handleTransferERC20(w http.ResponseWriter, req *http.Request) error {
	return t.call(w, req, func(contract meter.Address, r *Request) *tokens.TokensBody {
		if r.Owner != nil && *r.Owner != r.From {
			return tokens.NewERC20TransferFromBody(contract, *r.Owner, r.To, r.amount())
		}
		return tokens.NewERC20TransferBody(contract, r.To, r.amount())
	})
}

// MountNFTs mounts the ERC721 routes.
func (t *Tokens) MountNFTs(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{contract}").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(t.handleMintNFT))
	sub.Path("/{contract}/operators").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(t.handleSetOperator))
	sub.Path("/{contract}/operators/{owner}/{operator}").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(t.handleGetOperator))
	sub.Path("/{contract}/floor-price").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(t.handleFloorPrice))
	sub.Path("/{contract}/{id}").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(t.handleGetNFT))
	sub.Path("/{contract}/{id}/metadata").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(t.handleGetMetadata))
	sub.Path("/{contract}/{id}/approve").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(t.handleApproveNFT))
	sub.Path("/{contract}/{id}/transfer").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(t.handleTransferNFT))
}

// MountWallet mounts the per-owner NFT listing.
func (t *Tokens) MountWallet(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}/nfts").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(t.handleWalletNFTs))
}

// MountERC20s mounts the ERC20 routes.
func (t *Tokens) MountERC20s(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{contract}").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(t.handleGetERC20))
	sub.Path("/{contract}/mint").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(t.handleMintERC20))
	sub.Path("/{contract}/approve").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(t.handleApproveERC20))
	sub.Path("/{contract}/transfer").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(t.handleTransferERC20))
	sub.Path("/{contract}/allowances/{owner}/{spender}").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(t.handleGetAllowance))
}
